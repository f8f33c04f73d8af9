package seasons

import (
	"context"
	"errors"
	"sync"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

type Step string

const (
	StepSelectStatus  Step = "select_status"
	StepSeasonDetails Step = "season_details"
	StepClosed        Step = "closed"
)

// EditStatusPolicy decides whether the status can change while editing an
// existing season.
type EditStatusPolicy string

const (
	EditStatusLocked     EditStatusPolicy = "locked"
	EditStatusChangeable EditStatusPolicy = "changeable"
)

const msgSelectStatus = "Please select a status"

var (
	ErrWizardClosed   = errors.New("wizard is closed")
	ErrWrongStep      = errors.New("action not available on this step")
	ErrStatusLocked   = errors.New("status cannot be changed while editing")
	ErrSubmitInFlight = errors.New("submission already in progress")
	ErrInvalidDraft   = errors.New("draft has validation errors")
)

// SubmitFunc persists a validated draft. It runs without the wizard lock held.
type SubmitFunc func(ctx context.Context, draft Draft) error

// Wizard is the explicit state container behind one season popup. All
// methods are safe for concurrent use.
type Wizard struct {
	mu         sync.Mutex
	mode       Mode
	policy     EditStatusPolicy
	seasonID   int64
	step       Step
	draft      Draft
	seed       Draft
	stepError  string
	errors     Errors
	submitting bool
}

// View is an immutable snapshot for rendering.
type View struct {
	Mode         Mode
	SeasonID     int64
	Step         Step
	Draft        Draft
	StepError    string
	Errors       Errors
	Submitting   bool
	StatusLocked bool
	CanGoBack    bool
	Requirements Requirements
}

// NewCreateWizard opens the wizard on status selection, seeded with defaults.
func NewCreateWizard(seed Draft) *Wizard {
	seed = seed.withDerivedSlug()
	return &Wizard{
		mode:  ModeCreate,
		step:  StepSelectStatus,
		draft: seed.Clone(),
		seed:  seed.Clone(),
	}
}

// NewEditWizard opens the wizard directly on the details step, seeded from
// an existing season.
func NewEditWizard(seasonID int64, existing Draft, policy EditStatusPolicy) *Wizard {
	if policy == "" {
		policy = EditStatusLocked
	}
	return &Wizard{
		mode:     ModeEdit,
		policy:   policy,
		seasonID: seasonID,
		step:     StepSeasonDetails,
		draft:    existing.Clone(),
		seed:     existing.Clone(),
	}
}

func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	status, _ := w.draft.Status()
	return View{
		Mode:         w.mode,
		SeasonID:     w.seasonID,
		Step:         w.step,
		Draft:        w.draft.Clone(),
		StepError:    w.stepError,
		Errors:       append(Errors(nil), w.errors...),
		Submitting:   w.submitting,
		StatusLocked: w.statusLocked(),
		CanGoBack:    w.mode == ModeCreate && w.step == StepSeasonDetails,
		Requirements: RequirementsFor(status),
	}
}

func (w *Wizard) statusLocked() bool {
	return w.mode == ModeEdit && w.policy == EditStatusLocked
}

// SelectStatus switches the draft to status and applies the fields that
// status forces right away.
func (w *Wizard) SelectStatus(status Status) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepClosed {
		return ErrWizardClosed
	}
	if w.submitting {
		return ErrSubmitInFlight
	}
	if !status.Valid() {
		return errors.New("unknown status")
	}
	if w.statusLocked() {
		if current, ok := w.draft.Status(); ok && current != status {
			return ErrStatusLocked
		}
	}

	w.draft = w.draft.WithStatus(status)
	w.stepError = ""
	return nil
}

// Continue moves from status selection to details. It reports false and
// records the inline error when no status is selected.
func (w *Wizard) Continue() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepClosed {
		return false, ErrWizardClosed
	}
	if w.step != StepSelectStatus {
		return false, ErrWrongStep
	}
	if _, ok := w.draft.Status(); !ok {
		w.stepError = msgSelectStatus
		return false, nil
	}

	w.stepError = ""
	w.step = StepSeasonDetails
	w.draft = w.draft.withDerivedSlug()
	return true, nil
}

// Back returns to status selection. Only create mode has that step.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepClosed {
		return ErrWizardClosed
	}
	if w.mode != ModeCreate || w.step != StepSeasonDetails {
		return ErrWrongStep
	}
	w.step = StepSelectStatus
	w.errors = nil
	return nil
}

// Update merges form input into the draft on the details step. The draft
// is frozen while a submit is in flight.
func (w *Wizard) Update(in Input) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepClosed {
		return ErrWizardClosed
	}
	if w.step != StepSeasonDetails {
		return ErrWrongStep
	}
	if w.submitting {
		return ErrSubmitInFlight
	}
	w.draft = w.draft.Apply(in)
	return nil
}

// Cancel discards every edit, restores the seed and closes the wizard.
func (w *Wizard) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.draft = w.seed.Clone()
	w.errors = nil
	w.stepError = ""
	w.submitting = false
	w.step = StepClosed
}

// Submit validates the draft and hands it to fn. Validation failures are
// kept on the wizard and returned as Errors wrapped with ErrInvalidDraft.
// A second Submit while fn is running fails with ErrSubmitInFlight.
func (w *Wizard) Submit(ctx context.Context, fn SubmitFunc) error {
	w.mu.Lock()
	switch {
	case w.step == StepClosed:
		w.mu.Unlock()
		return ErrWizardClosed
	case w.step != StepSeasonDetails:
		w.mu.Unlock()
		return ErrWrongStep
	case w.submitting:
		w.mu.Unlock()
		return ErrSubmitInFlight
	}

	if errs := Validate(w.draft); len(errs) > 0 {
		w.errors = errs
		w.mu.Unlock()
		return &ValidationError{Errors: errs}
	}
	w.errors = nil
	w.submitting = true
	draft := w.draft.Clone()
	w.mu.Unlock()

	err := fn(ctx, draft)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		return err
	}
	w.step = StepClosed
	return nil
}

// SetErrors records server-side field errors (such as a taken slug) so the
// details step can show them next to the inputs.
func (w *Wizard) SetErrors(errs Errors) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errors = append(Errors(nil), errs...)
}

type ValidationError struct {
	Errors Errors
}

func (e *ValidationError) Error() string {
	return ErrInvalidDraft.Error() + ": " + e.Errors.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDraft
}
