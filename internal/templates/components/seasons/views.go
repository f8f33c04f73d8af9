package seasons

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/Runway/internal/models"
	domain "github.com/codr1/Runway/internal/seasons"
)

// html collects writes and keeps the first error.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func attr(s string) string {
	return templ.EscapeString(s)
}

// WizardModal renders the season popup for its current step.
func WizardModal(data WizardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		view := data.View
		if view.Step == domain.StepClosed {
			h.raw(`<div id="season-wizard"></div>`)
			return h.err
		}

		title := "New season"
		if view.Mode == domain.ModeEdit {
			title = "Edit season"
		}
		h.rawf(`<div id="season-wizard" class="modal" data-step="%s" data-draft="%s">`, attr(string(view.Step)), attr(data.DraftID))
		h.raw(`<div class="modal-header"><h2>`)
		h.text(title)
		h.rawf(`</h2><button type="button" hx-delete="%s" hx-target="#season-wizard" hx-swap="outerHTML">Cancel</button></div>`, attr(data.wizardURL("")))

		switch view.Step {
		case domain.StepSelectStatus:
			renderStatusStep(h, data)
		case domain.StepSeasonDetails:
			renderDetailsStep(h, data)
		}
		h.raw(`</div>`)
		return h.err
	})
}

func renderStatusStep(h *html, data WizardData) {
	h.rawf(`<form hx-post="%s" hx-target="#season-wizard" hx-swap="outerHTML">`, attr(data.wizardURL("continue")))
	h.raw(`<fieldset><legend>Season status</legend>`)
	for _, option := range data.StatusOptions {
		checked := ""
		if option.Selected {
			checked = " checked"
		}
		h.rawf(`<label><input type="radio" name="status" value="%s" hx-post="%s" hx-trigger="change" hx-target="#season-wizard" hx-swap="outerHTML"%s> `,
			attr(string(option.Value)), attr(data.wizardURL("status")), checked)
		h.text(option.Label)
		h.raw(`</label>`)
	}
	h.raw(`</fieldset>`)
	if data.View.StepError != "" {
		h.raw(`<p class="field-error" role="alert">`)
		h.text(data.View.StepError)
		h.raw(`</p>`)
	}
	h.raw(`<button type="submit">Continue</button></form>`)
}

func renderDetailsStep(h *html, data WizardData) {
	view := data.View
	draft := view.Draft
	status, _ := draft.Status()

	h.rawf(`<form hx-post="%s" hx-target="#season-wizard" hx-swap="outerHTML" hx-encoding="multipart/form-data">`, attr(data.wizardURL("submit")))

	if view.StatusLocked {
		h.raw(`<p class="status-badge">`)
		h.text(status.Label())
		h.raw(`</p>`)
	} else {
		h.rawf(`<label>Status <select name="status" hx-post="%s" hx-trigger="change" hx-target="#season-wizard" hx-swap="outerHTML">`, attr(data.wizardURL("status")))
		for _, option := range data.StatusOptions {
			selected := ""
			if option.Selected {
				selected = " selected"
			}
			h.rawf(`<option value="%s"%s>`, attr(string(option.Value)), selected)
			h.text(option.Label)
			h.raw(`</option>`)
		}
		h.raw(`</select></label>`)
	}

	h.raw(`<label>Event <select name="event_id">`)
	for _, event := range data.Events {
		selected := ""
		if event.ID == draft.EventID {
			selected = " selected"
		}
		h.rawf(`<option value="%d"%s>`, event.ID, selected)
		h.text(event.Name)
		h.raw(`</option>`)
	}
	h.raw(`</select></label>`)
	fieldError(h, data.FieldErrors, domain.FieldEventID)

	year := ""
	if draft.Year > 0 {
		year = strconv.Itoa(draft.Year)
	}
	input(h, "Year", "year", "number", year, data.FieldErrors, domain.FieldYear, "")
	input(h, "Slug", "slug", "text", draft.Slug, data.FieldErrors, domain.FieldSlug, "")
	input(h, "Start date", "start_date", "date", models.FormatDate(draft.StartDate), data.FieldErrors, domain.FieldStartDate, "")
	input(h, "End date", "end_date", "date", models.FormatDate(draft.EndDate), data.FieldErrors, domain.FieldEndDate, "")
	input(h, "Audition form deadline", "audition_form_deadline", "date", models.FormatDate(draft.AuditionFormDeadline()),
		data.FieldErrors, domain.FieldAuditionFormDeadline, view.Requirements.Rule(domain.FieldAuditionFormDeadline))
	input(h, "Voting end date", "voting_end_date", "date", models.FormatDate(draft.VotingEndDate()),
		data.FieldErrors, domain.FieldVotingEndDate, view.Requirements.Rule(domain.FieldVotingEndDate))

	if status != domain.StatusEnded {
		input(h, "Price per vote", "price_per_vote", "number", strconv.FormatInt(draft.PricePerVote(), 10),
			data.FieldErrors, domain.FieldPricePerVote, view.Requirements.Rule(domain.FieldPricePerVote))
		h.raw(`<label>Notices <textarea name="notices">`)
		h.text(strings.Join(draft.Notices(), "\n"))
		h.raw(`</textarea></label>`)
		fieldError(h, data.FieldErrors, domain.FieldNotice)
	}

	h.raw(`<label>Poster <input type="file" name="poster" accept="image/*"></label>`)
	h.raw(`<label><input type="checkbox" name="poster_remove" value="true"> Remove poster</label>`)
	h.raw(`<label>Gallery <input type="file" name="gallery" accept="image/*" multiple></label>`)

	if view.CanGoBack {
		h.rawf(`<button type="button" hx-post="%s" hx-target="#season-wizard" hx-swap="outerHTML">Back</button>`, attr(data.wizardURL("back")))
	}
	disabled := ""
	if view.Submitting {
		disabled = " disabled"
	}
	h.rawf(`<button type="submit"%s>Save season</button></form>`, disabled)
}

func input(h *html, label, name, kind, value string, errs map[string]string, field domain.Field, rule domain.Rule) {
	required := ""
	if rule == domain.RuleRequired {
		required = " required"
	}
	h.raw(`<label>`)
	h.text(label)
	h.rawf(` <input type="%s" name="%s" value="%s"%s>`, attr(kind), attr(name), attr(value), required)
	h.raw(`</label>`)
	fieldError(h, errs, field)
}

func fieldError(h *html, errs map[string]string, field domain.Field) {
	message, ok := errs[string(field)]
	if !ok {
		return
	}
	h.rawf(`<p class="field-error" data-field="%s">`, attr(string(field)))
	h.text(message)
	h.raw(`</p>`)
}

// SeasonList renders the per-event season table. It refetches itself on the
// refreshSeasonsList trigger.
func SeasonList(data ListData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.rawf(`<section id="seasons-list" hx-get="/api/v1/events/%d/seasons" hx-trigger="refreshSeasonsList from:body" hx-swap="outerHTML">`, data.EventID)
		h.raw(`<h2>`)
		h.text(data.EventName)
		h.raw(` seasons</h2>`)
		if len(data.Seasons) == 0 {
			h.raw(`<p class="empty">No seasons yet.</p>`)
		} else {
			h.raw(`<ul>`)
			for _, season := range data.Seasons {
				h.rawf(`<li data-season="%d">`, season.ID)
				h.text(fmt.Sprintf("%d · %s · %s", season.Year, season.Status.Label(), season.Slug))
				h.rawf(` <button type="button" hx-post="/api/v1/season-wizard?season_id=%d" hx-target="#season-wizard" hx-swap="outerHTML">Edit</button>`, season.ID)
				h.rawf(` <button type="button" hx-delete="/api/v1/seasons/%d" hx-confirm="Delete this season?">Delete</button>`, season.ID)
				h.raw(`</li>`)
			}
			h.raw(`</ul>`)
		}
		h.raw(`<button type="button" hx-post="/api/v1/season-wizard" hx-target="#season-wizard" hx-swap="outerHTML">New season</button>`)
		h.raw(`<div id="season-wizard"></div></section>`)
		return h.err
	})
}

// Requirements renders the field hint list for a status.
func Requirements(status domain.Status, reqs domain.Requirements) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.rawf(`<ul class="requirements" data-status="%s">`, attr(string(status)))
		for _, field := range []domain.Field{
			domain.FieldAuditionFormDeadline,
			domain.FieldVotingEndDate,
			domain.FieldPricePerVote,
			domain.FieldNotice,
		} {
			rule, ok := reqs[field]
			if !ok {
				continue
			}
			h.rawf(`<li data-field="%s">`, attr(string(field)))
			h.text(string(field) + ": " + string(rule))
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
		return h.err
	})
}
