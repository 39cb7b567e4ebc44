package calendar

import (
	"sort"
	"strings"
	"time"
)

// Form is the editable state of the create and edit modals. Dates are kept as
// the ISO-8601 strings the user typed.
type Form struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Category    Category `json:"category"`
	AllDay      bool     `json:"is_all_day"`
	Recurrence  string   `json:"recurrence"`
}

// Draft is a validated form ready for the collaborator.
type Draft struct {
	Title       string
	Description string
	Start       time.Time
	End         *time.Time
	Category    Category
	AllDay      bool
	Recurrence  string
}

// FormError lists the fields that blocked a submission.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "calendar: invalid form"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "calendar: invalid form: " + strings.Join(keys, ", ")
}

func (e *FormError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// DefaultForm returns the empty form, starting at the next full hour.
func DefaultForm(now time.Time, loc *time.Location) Form {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), local.Hour()+1, 0, 0, 0, loc)
	return Form{
		StartDate: FormatTimestamp(start, loc),
		Category:  CategoryWork,
	}
}

// FormFromEvent copies e into a form.
func FormFromEvent(e Event, loc *time.Location) Form {
	f := Form{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   FormatTimestamp(e.Start, loc),
		Category:    e.Category,
		AllDay:      e.AllDay,
		Recurrence:  e.Recurrence,
	}
	if e.End != nil {
		f.EndDate = FormatTimestamp(*e.End, loc)
	}
	return f
}

// Draft checks the required fields and parses the dates in loc.
func (f Form) Draft(loc *time.Location) (Draft, error) {
	fErr := &FormError{}

	title := strings.TrimSpace(f.Title)
	if title == "" {
		fErr.add("title", "title is required")
	}

	var start time.Time
	if strings.TrimSpace(f.StartDate) == "" {
		fErr.add("start_date", "start date is required")
	} else if parsed, err := ParseTimestamp(f.StartDate, loc); err != nil {
		fErr.add("start_date", "start date is invalid")
	} else {
		start = parsed
	}

	category := f.Category
	if category == "" {
		category = CategoryWork
	}
	if !category.Assignable() {
		fErr.add("category", "category is invalid")
	}

	var end *time.Time
	if !f.AllDay && strings.TrimSpace(f.EndDate) != "" {
		parsed, err := ParseTimestamp(f.EndDate, loc)
		switch {
		case err != nil:
			fErr.add("end_date", "end date is invalid")
		case !start.IsZero() && parsed.Before(start):
			fErr.add("end_date", "end date must not be before start date")
		default:
			end = &parsed
		}
	}

	if len(fErr.Fields) > 0 {
		return Draft{}, fErr
	}
	if f.AllDay {
		start = StartOfDay(start)
	}
	return Draft{
		Title:       title,
		Description: strings.TrimSpace(f.Description),
		Start:       start,
		End:         end,
		Category:    category,
		AllDay:      f.AllDay,
		Recurrence:  strings.TrimSpace(f.Recurrence),
	}, nil
}
