package models

import (
	"testing"
	"time"
)

func TestApplyThenUnapplyRestoresNotApplied(t *testing.T) {
	tender := &Tender{ApplicationStatus: ApplicationStatusNotApplied}
	now := time.Now()

	tender.Apply("user-1", now)

	if !tender.IsApplied {
		t.Error("Expected IsApplied true after Apply")
	}
	if tender.ApplicationStatus != ApplicationStatusAwaitingResults {
		t.Errorf("Expected status %q, got %q", ApplicationStatusAwaitingResults, tender.ApplicationStatus)
	}
	if tender.AppliedDate == nil {
		t.Error("Expected AppliedDate to be set after Apply")
	}

	tender.Unapply("user-1", now)

	if tender.IsApplied {
		t.Error("Expected IsApplied false after sole applicant unapplies")
	}
	if tender.ApplicationStatus != ApplicationStatusNotApplied {
		t.Errorf("Expected status %q, got %q", ApplicationStatusNotApplied, tender.ApplicationStatus)
	}
	if tender.AppliedDate != nil {
		t.Error("Expected AppliedDate cleared after sole applicant unapplies")
	}
}

func TestApplyIsIdempotentPerUser(t *testing.T) {
	tender := &Tender{ApplicationStatus: ApplicationStatusNotApplied}
	now := time.Now()

	tender.Apply("user-1", now)
	tender.Apply("user-1", now.Add(time.Hour))

	if len(tender.AppliedBy) != 1 {
		t.Errorf("Expected 1 entry in AppliedBy, got %d", len(tender.AppliedBy))
	}
}

func TestUnapplyKeepsAppliedWhileOthersRemain(t *testing.T) {
	tender := &Tender{ApplicationStatus: ApplicationStatusNotApplied}
	now := time.Now()

	tender.Apply("user-1", now)
	tender.Apply("user-2", now)
	tender.Unapply("user-1", now)

	if !tender.IsApplied {
		t.Error("Expected IsApplied true while another user remains applied")
	}
	if tender.ApplicationStatus != ApplicationStatusAwaitingResults {
		t.Errorf("Expected status %q, got %q", ApplicationStatusAwaitingResults, tender.ApplicationStatus)
	}
	if len(tender.AppliedBy) != 1 || tender.AppliedBy[0] != "user-2" {
		t.Errorf("Expected AppliedBy to contain only user-2, got %v", tender.AppliedBy)
	}
}

func TestSetApplicationStatusStampsResultDate(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		status           string
		expectResultDate bool
	}{
		{ApplicationStatusWon, true},
		{ApplicationStatusLost, true},
		{ApplicationStatusAwaitingResults, false},
		{ApplicationStatusNotApplied, false},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			tender := &Tender{ApplicationStatus: ApplicationStatusNotApplied}

			if err := tender.SetApplicationStatus(tc.status, now); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tender.ApplicationStatus != tc.status {
				t.Errorf("Expected status %q, got %q", tc.status, tender.ApplicationStatus)
			}
			if tc.expectResultDate && tender.ResultDate == nil {
				t.Error("Expected ResultDate to be stamped")
			}
			if !tc.expectResultDate && tender.ResultDate != nil {
				t.Error("Expected ResultDate to remain unset")
			}
		})
	}
}

func TestSetApplicationStatusDoesNotClearResultDate(t *testing.T) {
	tender := &Tender{ApplicationStatus: ApplicationStatusNotApplied}
	now := time.Now()

	if err := tender.SetApplicationStatus(ApplicationStatusWon, now); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := tender.SetApplicationStatus(ApplicationStatusAwaitingResults, now.Add(time.Hour)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if tender.ResultDate == nil {
		t.Error("Expected ResultDate to survive a transition away from Won")
	}
}

func TestSetApplicationStatusRejectsUnknownValue(t *testing.T) {
	tender := &Tender{ApplicationStatus: ApplicationStatusAwaitingResults}

	err := tender.SetApplicationStatus("InvalidValue", time.Now())
	if err == nil {
		t.Fatal("Expected error for unknown application status")
	}
	if tender.ApplicationStatus != ApplicationStatusAwaitingResults {
		t.Errorf("Expected tender unchanged after rejected status, got %q", tender.ApplicationStatus)
	}
	if tender.ResultDate != nil {
		t.Error("Expected ResultDate unchanged after rejected status")
	}
}

func TestDirectNotAppliedToWonIsAllowed(t *testing.T) {
	tender := &Tender{ApplicationStatus: ApplicationStatusNotApplied}

	if err := tender.SetApplicationStatus(ApplicationStatusWon, time.Now()); err != nil {
		t.Fatalf("Expected direct transition to Won to be allowed, got %v", err)
	}
	if tender.ApplicationStatus != ApplicationStatusWon {
		t.Errorf("Expected status %q, got %q", ApplicationStatusWon, tender.ApplicationStatus)
	}
}
