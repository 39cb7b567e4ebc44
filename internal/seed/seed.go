// Package seed loads a YAML bundle of events and resources and applies it to an
// empty dashboard on first start.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/calendar"
)

// Bundle is the on-disk seed document.
type Bundle struct {
	Events    []EventSeed               `yaml:"events"`
	Resources map[string][]ResourceSeed `yaml:"resources"`
}

// EventSeed describes one calendar event. Start and End are ISO-8601 values;
// zone-less values are read in the display location.
type EventSeed struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	Category    string `yaml:"category"`
	AllDay      bool   `yaml:"all_day"`
	Recurrence  string `yaml:"recurrence"`
}

// ResourceSeed describes one entry of a resource collection.
type ResourceSeed struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	URL         string            `yaml:"url"`
	Category    string            `yaml:"category"`
	Tags        []string          `yaml:"tags"`
	Attributes  map[string]string `yaml:"attributes"`
}

// Parse decodes a bundle. Unknown keys are rejected.
func Parse(r io.Reader) (Bundle, error) {
	var b Bundle
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return Bundle{}, nil
		}
		return Bundle{}, fmt.Errorf("decode seed bundle: %w", err)
	}
	return b, nil
}

// LoadFile reads and parses the bundle at path.
func LoadFile(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Result reports what Apply did.
type Result struct {
	Skipped   bool
	Events    int
	Resources int
}

// Seeder applies bundles through the application services so that seeded data
// passes the same validation as user input.
type Seeder struct {
	events    *application.EventService
	resources *application.ResourceService
	loc       *time.Location
	logger    *slog.Logger
}

// NewSeeder constructs a Seeder.
func NewSeeder(events *application.EventService, resources *application.ResourceService, loc *time.Location, logger *slog.Logger) *Seeder {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{events: events, resources: resources, loc: loc, logger: logger.With("component", "seed")}
}

// Apply creates every bundle entry as principal. It does nothing when any event
// or resource already exists. The first failing entry aborts the run.
func (s *Seeder) Apply(ctx context.Context, principal application.Principal, bundle Bundle) (Result, error) {
	empty, err := s.empty(ctx, principal)
	if err != nil {
		return Result{}, err
	}
	if !empty {
		s.logger.InfoContext(ctx, "storage already populated, skipping seed")
		return Result{Skipped: true}, nil
	}

	var res Result
	for i, es := range bundle.Events {
		input, err := s.eventInput(es)
		if err != nil {
			return res, fmt.Errorf("seed event %d (%q): %w", i, es.Title, err)
		}
		if _, err := s.events.CreateEvent(ctx, application.CreateEventParams{Principal: principal, Input: input}); err != nil {
			return res, fmt.Errorf("seed event %d (%q): %w", i, es.Title, err)
		}
		res.Events++
	}

	keys := make([]string, 0, len(bundle.Resources))
	for k := range bundle.Resources {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		kind, err := application.ParseKind(key)
		if err != nil {
			return res, fmt.Errorf("seed resources: %w", err)
		}
		for i, rs := range bundle.Resources[key] {
			_, err := s.resources.CreateResource(ctx, application.CreateResourceParams{
				Principal: principal,
				Kind:      kind,
				Input: application.ResourceInput{
					Title:       rs.Title,
					Description: rs.Description,
					URL:         rs.URL,
					Category:    rs.Category,
					Tags:        rs.Tags,
					Attributes:  rs.Attributes,
				},
			})
			if err != nil {
				return res, fmt.Errorf("seed %s %d (%q): %w", kind, i, rs.Title, err)
			}
			res.Resources++
		}
	}

	s.logger.InfoContext(ctx, "seed applied", "events", res.Events, "resources", res.Resources)
	return res, nil
}

func (s *Seeder) empty(ctx context.Context, principal application.Principal) (bool, error) {
	events, err := s.events.ListEvents(ctx, application.ListEventsParams{Principal: principal})
	if err != nil {
		return false, fmt.Errorf("list events: %w", err)
	}
	if len(events) > 0 {
		return false, nil
	}
	for _, kind := range application.Kinds() {
		resources, err := s.resources.ListResources(ctx, application.ListResourcesParams{Principal: principal, Kind: kind})
		if err != nil {
			return false, fmt.Errorf("list %s: %w", kind, err)
		}
		if len(resources) > 0 {
			return false, nil
		}
	}
	return true, nil
}

func (s *Seeder) eventInput(es EventSeed) (application.EventInput, error) {
	start, err := calendar.ParseTimestamp(es.Start, s.loc)
	if err != nil {
		return application.EventInput{}, fmt.Errorf("start: %w", err)
	}
	input := application.EventInput{
		Title:       es.Title,
		Description: es.Description,
		Start:       start,
		AllDay:      es.AllDay,
		Recurrence:  es.Recurrence,
		Category:    calendar.CategoryWork,
	}
	if es.Category != "" {
		c, err := calendar.ParseCategory(es.Category)
		if err != nil {
			return application.EventInput{}, err
		}
		input.Category = c
	}
	if es.End != "" {
		end, err := calendar.ParseTimestamp(es.End, s.loc)
		if err != nil {
			return application.EventInput{}, fmt.Errorf("end: %w", err)
		}
		input.End = &end
	}
	return input, nil
}
