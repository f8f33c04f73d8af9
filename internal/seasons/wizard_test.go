package seasons

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestWizard_ContinueWithoutStatus(t *testing.T) {
	w := NewCreateWizard(Draft{})

	moved, err := w.Continue()
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if moved {
		t.Fatalf("wizard advanced without a status")
	}
	view := w.View()
	if view.Step != StepSelectStatus {
		t.Fatalf("step = %s, want %s", view.Step, StepSelectStatus)
	}
	if view.StepError != "Please select a status" {
		t.Fatalf("step error = %q", view.StepError)
	}
}

func TestWizard_ContinueDerivesSlug(t *testing.T) {
	w := NewCreateWizard(Draft{EventID: 3, EventName: "Miss Nepal", Year: 2025})
	if err := w.SelectStatus(StatusUpcoming); err != nil {
		t.Fatalf("SelectStatus: %v", err)
	}

	moved, err := w.Continue()
	if err != nil || !moved {
		t.Fatalf("Continue = %t, %v", moved, err)
	}
	view := w.View()
	if view.Step != StepSeasonDetails {
		t.Fatalf("step = %s", view.Step)
	}
	if view.Draft.Slug != "miss-nepal-2025" {
		t.Fatalf("slug = %q", view.Draft.Slug)
	}
	if view.StepError != "" {
		t.Fatalf("stale step error %q", view.StepError)
	}
	if !view.CanGoBack {
		t.Fatalf("create mode should allow going back")
	}
}

func TestWizard_ContinueKeepsManualSlug(t *testing.T) {
	w := NewCreateWizard(Draft{EventName: "Miss Nepal", Year: 2025, Slug: "custom", SlugEdited: true})
	_ = w.SelectStatus(StatusOngoing)
	if _, err := w.Continue(); err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if got := w.View().Draft.Slug; got != "custom" {
		t.Fatalf("slug = %q, want custom", got)
	}
}

func TestWizard_SelectEndedClearsVotingFields(t *testing.T) {
	w := NewEditWizard(9, Draft{Details: OngoingDetails{PricePerVote: 100, Notices: []string{"A"}}}, EditStatusChangeable)

	if err := w.SelectStatus(StatusEnded); err != nil {
		t.Fatalf("SelectStatus: %v", err)
	}
	draft := w.View().Draft
	if draft.PricePerVote() != 0 {
		t.Fatalf("price = %d, want 0", draft.PricePerVote())
	}
	if len(draft.Notices()) != 0 {
		t.Fatalf("notices = %v, want empty", draft.Notices())
	}
}

func TestWizard_EditLockedStatus(t *testing.T) {
	w := NewEditWizard(9, Draft{Details: OngoingDetails{}}, EditStatusLocked)

	if err := w.SelectStatus(StatusEnded); !errors.Is(err, ErrStatusLocked) {
		t.Fatalf("expected ErrStatusLocked, got %v", err)
	}
	if err := w.SelectStatus(StatusOngoing); err != nil {
		t.Fatalf("reselecting the current status should pass: %v", err)
	}
	view := w.View()
	if view.Step != StepSeasonDetails || !view.StatusLocked {
		t.Fatalf("edit wizard view = %+v", view)
	}
	if err := w.Back(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("edit mode Back should fail, got %v", err)
	}
}

func TestWizard_BackAndCancel(t *testing.T) {
	seed := Draft{EventID: 1, EventName: "Miss Nepal", Year: 2025}
	w := NewCreateWizard(seed)
	_ = w.SelectStatus(StatusUpcoming)
	_, _ = w.Continue()

	start := date(t, "2025-02-01")
	if err := w.Update(Input{StartDate: &start}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := w.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if w.View().Step != StepSelectStatus {
		t.Fatalf("Back did not return to status selection")
	}
	if err := w.Update(Input{StartDate: &start}); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("Update on status step should fail, got %v", err)
	}

	w.Cancel()
	view := w.View()
	if view.Step != StepClosed {
		t.Fatalf("step after cancel = %s", view.Step)
	}
	if !view.Draft.StartDate.IsZero() {
		t.Fatalf("cancel kept in-progress edits: %s", view.Draft.StartDate)
	}
	if _, ok := view.Draft.Status(); ok {
		t.Fatalf("cancel kept the selected status")
	}
	if _, err := w.Continue(); !errors.Is(err, ErrWizardClosed) {
		t.Fatalf("closed wizard accepted Continue: %v", err)
	}
}

func TestWizard_SubmitValidationErrors(t *testing.T) {
	w := NewCreateWizard(Draft{EventID: 1, EventName: "Miss Nepal", Year: 2024})
	_ = w.SelectStatus(StatusUpcoming)
	_, _ = w.Continue()

	start := date(t, "2024-01-01")
	end := date(t, "2024-06-01")
	audition := date(t, "2024-06-02")
	_ = w.Update(Input{StartDate: &start, EndDate: &end, AuditionFormDeadline: &audition})

	called := false
	err := w.Submit(context.Background(), func(ctx context.Context, d Draft) error {
		called = true
		return nil
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || !errors.Is(err, ErrInvalidDraft) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if called {
		t.Fatalf("submit ran despite validation errors")
	}
	if !validationErr.Errors.Has(FieldAuditionFormDeadline) {
		t.Fatalf("missing auditionFormDeadline error: %v", validationErr.Errors)
	}
	if view := w.View(); view.Step != StepSeasonDetails || len(view.Errors) == 0 {
		t.Fatalf("wizard should stay on details with errors: %+v", view)
	}
}

func TestWizard_SubmitSuccessCloses(t *testing.T) {
	w := NewEditWizard(4, validDraft(t), EditStatusLocked)

	var submitted Draft
	err := w.Submit(context.Background(), func(ctx context.Context, d Draft) error {
		submitted = d
		return nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.Slug != "miss-nepal-2024" {
		t.Fatalf("submitted draft = %+v", submitted)
	}
	if w.View().Step != StepClosed {
		t.Fatalf("wizard not closed after submit")
	}
}

func TestWizard_SubmitFailureKeepsDetails(t *testing.T) {
	w := NewEditWizard(4, validDraft(t), EditStatusLocked)
	boom := errors.New("network down")

	if err := w.Submit(context.Background(), func(ctx context.Context, d Draft) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected submit error, got %v", err)
	}
	view := w.View()
	if view.Step != StepSeasonDetails || view.Submitting {
		t.Fatalf("after failed submit view = %+v", view)
	}
}

func TestWizard_RejectsDuplicateSubmit(t *testing.T) {
	w := NewEditWizard(4, validDraft(t), EditStatusLocked)

	started := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = w.Submit(context.Background(), func(ctx context.Context, d Draft) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	if !w.View().Submitting {
		t.Fatalf("view should report an in-flight submit")
	}
	err := w.Submit(context.Background(), func(ctx context.Context, d Draft) error {
		t.Errorf("duplicate submit ran")
		return nil
	})
	if !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	before := w.View().Draft
	year := before.Year + 1
	if err := w.Update(Input{Year: &year}); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("update during submit: %v", err)
	}
	if err := w.SelectStatus(StatusEnded); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("status change during submit: %v", err)
	}
	if after := w.View().Draft; after.Year != before.Year {
		t.Fatalf("draft changed during submit: year %d -> %d", before.Year, after.Year)
	}

	close(release)
	wg.Wait()
	if w.View().Step != StepClosed {
		t.Fatalf("first submit should close the wizard")
	}
}
