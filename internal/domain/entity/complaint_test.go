package entity

import (
	"testing"
	"time"
)

func TestComplaintOverdue(t *testing.T) {
	now := time.Now()
	old := now.Add(-OverdueAge - time.Hour)
	fresh := now.Add(-time.Hour)

	tests := []struct {
		name      string
		status    ComplaintStatus
		createdAt time.Time
		want      bool
	}{
		{"open and aged", ComplaintStatusOpen, old, true},
		{"assigned and aged", ComplaintStatusAssigned, old, true},
		{"open but fresh", ComplaintStatusOpen, fresh, false},
		{"in progress and aged", ComplaintStatusInProgress, old, false},
		{"resolved and aged", ComplaintStatusResolved, old, false},
		{"closed and aged", ComplaintStatusClosed, old, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Complaint{Status: tt.status, CreatedAt: tt.createdAt}
			if got := c.Overdue(now); got != tt.want {
				t.Errorf("Overdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidComplaintPriority(t *testing.T) {
	for _, known := range ComplaintPriorities {
		if !ValidComplaintPriority(known) {
			t.Errorf("expected %q to be a valid priority", known)
		}
	}
	if ValidComplaintPriority("urgent") {
		t.Error("priority match must be case sensitive")
	}
	if ValidComplaintPriority("") {
		t.Error("expected empty priority to be rejected")
	}
}
