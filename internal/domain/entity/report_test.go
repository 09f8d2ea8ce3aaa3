package entity

import "testing"

func TestReportFrozen(t *testing.T) {
	frozen := []ReportStatus{ReportStatusApproved, ReportStatusPublished}
	for _, s := range frozen {
		r := &Report{Status: s}
		if !r.Frozen() {
			t.Errorf("expected %s report to be frozen", s)
		}
		if !r.Downloadable() {
			t.Errorf("expected %s report to be downloadable", s)
		}
	}

	editable := []ReportStatus{ReportStatusDraft, ReportStatusPendingReview, ReportStatusRejected}
	for _, s := range editable {
		r := &Report{Status: s}
		if r.Frozen() {
			t.Errorf("expected %s report not to be frozen", s)
		}
		if r.Downloadable() {
			t.Errorf("expected %s report not to be downloadable", s)
		}
	}
}

func TestReportStatusReviewed(t *testing.T) {
	reviewed := []ReportStatus{ReportStatusApproved, ReportStatusRejected, ReportStatusPublished}
	for _, s := range reviewed {
		if !s.Reviewed() {
			t.Errorf("expected %s to carry a review stamp", s)
		}
	}
	if ReportStatusDraft.Reviewed() || ReportStatusPendingReview.Reviewed() {
		t.Error("expected pre-review statuses not to count as reviewed")
	}
}
