package repository

import (
	"testing"

	"clinic-backend/internal/domain/entity"

	"gorm.io/gorm/clause"
)

func TestJsonbColumnsWrapsOnlyNamed(t *testing.T) {
	updates := map[string]interface{}{
		"subject":     "noisy waiting room",
		"attachments": entity.StringList{"photo.jpg"},
	}

	out := jsonbColumns(updates, "attachments", "comments")

	if _, ok := out["subject"].(string); !ok {
		t.Errorf("expected scalar column to pass through, got %T", out["subject"])
	}
	expr, ok := out["attachments"].(clause.Expr)
	if !ok {
		t.Fatalf("expected attachments to become an expression, got %T", out["attachments"])
	}
	if expr.SQL != "?::jsonb" {
		t.Errorf("unexpected SQL %q", expr.SQL)
	}
	if len(expr.Vars) != 1 || expr.Vars[0] != `["photo.jpg"]` {
		t.Errorf("unexpected vars %v", expr.Vars)
	}
	if _, present := out["comments"]; present {
		t.Error("expected absent columns to stay absent")
	}
}

// Appends must concatenate inside the store and tolerate a NULL column, so
// concurrent writers cannot drop each other's entries.
func TestJsonbAppendBuildsCoalescedConcat(t *testing.T) {
	v := jsonbAppend("comments", []entity.ComplaintComment{{Text: "following up"}})

	expr, ok := v.(clause.Expr)
	if !ok {
		t.Fatalf("expected expression, got %T", v)
	}
	if expr.SQL != "COALESCE(comments, '[]'::jsonb) || ?::jsonb" {
		t.Errorf("unexpected SQL %q", expr.SQL)
	}
	if len(expr.Vars) != 1 {
		t.Fatalf("expected one var, got %d", len(expr.Vars))
	}
}
