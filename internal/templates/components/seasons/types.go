package seasons

import (
	"github.com/codr1/Runway/internal/models"
	domain "github.com/codr1/Runway/internal/seasons"
)

type StatusOption struct {
	Value    domain.Status
	Label    string
	Selected bool
}

type WizardData struct {
	DraftID       string
	View          domain.View
	Events        []models.Event
	StatusOptions []StatusOption
	FieldErrors   map[string]string
}

type ListData struct {
	EventID   int64
	EventName string
	Seasons   []models.Season
}

func NewWizardData(draftID string, view domain.View, events []models.Event) WizardData {
	selected, _ := view.Draft.Status()
	options := make([]StatusOption, 0, len(domain.Statuses()))
	for _, status := range domain.Statuses() {
		options = append(options, StatusOption{
			Value:    status,
			Label:    status.Label(),
			Selected: status == selected,
		})
	}
	return WizardData{
		DraftID:       draftID,
		View:          view,
		Events:        events,
		StatusOptions: options,
		FieldErrors:   view.Errors.Map(),
	}
}

// wizardURL builds an action URL for the draft.
func (d WizardData) wizardURL(action string) string {
	url := "/api/v1/season-wizard/" + d.DraftID
	if action != "" {
		url += "/" + action
	}
	return url
}
