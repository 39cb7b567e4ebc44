package persistence

import "time"

// Event represents a calendar entry stored in persistence.
type Event struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Start       time.Time
	End         *time.Time
	Category    string
	AllDay      bool
	Recurrence  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Resource represents a curated dashboard entry of any resource kind.
type Resource struct {
	ID          string
	Kind        string
	UserID      string
	Title       string
	Description string
	URL         string
	Category    string
	Tags        []string
	Attributes  map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
