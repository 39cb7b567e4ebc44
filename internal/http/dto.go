package http

import (
	"time"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/calendar"
)

type eventDTO struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date,omitempty"`
	Category      string `json:"category"`
	CategoryLabel string `json:"category_label"`
	Color         string `json:"color"`
	AllDay        bool   `json:"is_all_day"`
	Recurrence    string `json:"recurrence,omitempty"`
	OccurrenceOf  string `json:"occurrence_of,omitempty"`
	Status        string `json:"status"`
	StatusLabel   string `json:"status_label"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

func formatInstant(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC3339)
}

func toEventDTO(e calendar.Event, now time.Time, loc *time.Location) eventDTO {
	status := calendar.Classify(now.In(loc), e.Start)
	dto := eventDTO{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		StartDate:     formatInstant(e.Start, loc),
		Category:      string(e.Category),
		CategoryLabel: e.Category.Label(),
		Color:         e.Category.Color(),
		AllDay:        e.AllDay,
		Recurrence:    e.Recurrence,
		OccurrenceOf:  e.OccurrenceOf,
		Status:        string(status),
		StatusLabel:   status.Label(),
	}
	if e.End != nil {
		dto.EndDate = formatInstant(*e.End, loc)
	}
	return dto
}

func toEventDTOs(events []calendar.Event, now time.Time, loc *time.Location) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toEventDTO(e, now, loc))
	}
	return out
}

func toStoredEventDTO(e application.Event, now time.Time, loc *time.Location) eventDTO {
	dto := toEventDTO(e.Calendar(), now, loc)
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !e.UpdatedAt.IsZero() {
		dto.UpdatedAt = e.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}

type entryDTO struct {
	eventDTO
	Urgent    bool `json:"is_urgent"`
	DaysUntil int  `json:"days_until"`
}

type pageDTO struct {
	Items       []entryDTO `json:"items"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	TotalPages  int        `json:"total_pages"`
	TotalItems  int        `json:"total_items"`
	HasNext     bool       `json:"has_next"`
	HasPrevious bool       `json:"has_previous"`
}

func toPageDTO(p calendar.Page[calendar.Entry], now time.Time, loc *time.Location) pageDTO {
	items := make([]entryDTO, 0, len(p.Items))
	for _, entry := range p.Items {
		items = append(items, entryDTO{
			eventDTO:  toEventDTO(entry.Event, now, loc),
			Urgent:    entry.Urgent,
			DaysUntil: entry.DaysUntil,
		})
	}
	return pageDTO{
		Items:       items,
		Page:        p.Number,
		PageSize:    p.Size,
		TotalPages:  p.TotalPages,
		TotalItems:  p.TotalItems,
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
	}
}

type statsDTO struct {
	Past   int `json:"past"`
	Today  int `json:"today"`
	Future int `json:"future"`
	Total  int `json:"total"`
}

func toStatsDTO(s calendar.Stats) statsDTO {
	return statsDTO{Past: s.Past, Today: s.Today, Future: s.Future, Total: s.Total}
}

type dayCellDTO struct {
	Date    string     `json:"date"`
	InMonth bool       `json:"in_month"`
	IsToday bool       `json:"is_today"`
	Events  []eventDTO `json:"events"`
}

func toDayCellDTOs(cells []calendar.DayCell, now time.Time, loc *time.Location) []dayCellDTO {
	out := make([]dayCellDTO, 0, len(cells))
	for _, c := range cells {
		out = append(out, dayCellDTO{
			Date:    calendar.FormatDate(c.Date),
			InMonth: c.InMonth,
			IsToday: c.IsToday,
			Events:  toEventDTOs(c.Events, now, loc),
		})
	}
	return out
}

type monthDTO struct {
	Year  int          `json:"year"`
	Month int          `json:"month"`
	Weeks int          `json:"weeks"`
	Cells []dayCellDTO `json:"cells"`
}

func toMonthDTO(m calendar.MonthView, now time.Time, loc *time.Location) monthDTO {
	return monthDTO{Year: m.Year, Month: int(m.Month), Weeks: m.Weeks(), Cells: toDayCellDTOs(m.Cells, now, loc)}
}

type weekDTO struct {
	Start string       `json:"start"`
	End   string       `json:"end"`
	Days  []dayCellDTO `json:"days"`
}

func toWeekDTO(wv calendar.WeekView, now time.Time, loc *time.Location) weekDTO {
	return weekDTO{
		Start: calendar.FormatDate(wv.Start),
		End:   calendar.FormatDate(wv.End),
		Days:  toDayCellDTOs(wv.Days, now, loc),
	}
}

type hourSlotDTO struct {
	Hour   int        `json:"hour"`
	Events []eventDTO `json:"events"`
}

type dayDTO struct {
	Date    string        `json:"date"`
	IsToday bool          `json:"is_today"`
	AllDay  []eventDTO    `json:"all_day"`
	Slots   []hourSlotDTO `json:"slots"`
	Events  []eventDTO    `json:"events"`
}

func toDayDTO(d calendar.DayView, now time.Time, loc *time.Location) dayDTO {
	slots := make([]hourSlotDTO, 0, len(d.Slots))
	for _, s := range d.Slots {
		slots = append(slots, hourSlotDTO{Hour: s.Hour, Events: toEventDTOs(s.Events, now, loc)})
	}
	return dayDTO{
		Date:    calendar.FormatDate(d.Date),
		IsToday: d.IsToday,
		AllDay:  toEventDTOs(d.AllDay, now, loc),
		Slots:   slots,
		Events:  toEventDTOs(d.Sorted, now, loc),
	}
}

type resourceDTO struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	KindLabel   string            `json:"kind_label"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	URL         string            `json:"url,omitempty"`
	Category    string            `json:"category,omitempty"`
	Tags        []string          `json:"tags"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

func toResourceDTO(r application.Resource) resourceDTO {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return resourceDTO{
		ID:          r.ID,
		Kind:        string(r.Kind),
		KindLabel:   r.Kind.Label(),
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		Category:    r.Category,
		Tags:        tags,
		Attributes:  r.Attributes,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
