package calendar

import (
	"errors"
	"testing"
)

func TestCategoryMappingsAreExhaustive(t *testing.T) {
	t.Parallel()

	seen := make(map[string]Category)
	for _, c := range append(Categories(), CategoryAll) {
		if c.Label() == "" {
			t.Fatalf("category %q has no label", c)
		}
		if c.Color() == "" {
			t.Fatalf("category %q has no color", c)
		}
		if other, ok := seen[c.Color()]; ok {
			t.Fatalf("categories %q and %q share a color", c, other)
		}
		seen[c.Color()] = c
	}
	for _, v := range Views() {
		if v.Label() == "" {
			t.Fatalf("view %q has no label", v)
		}
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	if c, err := ParseCategory(" salud "); err != nil || c != CategoryHealth {
		t.Fatalf("expected SALUD, got %q (%v)", c, err)
	}
	if _, err := ParseCategory("ALL"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ALL to be rejected as an event category, got %v", err)
	}
	if _, err := ParseCategory("OCIO"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected unknown category error, got %v", err)
	}

	if c, err := ParseFilter(""); err != nil || c != CategoryAll {
		t.Fatalf("expected empty filter to mean ALL, got %q (%v)", c, err)
	}
	if c, err := ParseFilter("estudio"); err != nil || c != CategoryStudy {
		t.Fatalf("expected ESTUDIO filter, got %q (%v)", c, err)
	}
	if _, err := ParseFilter("nope"); err == nil {
		t.Fatalf("expected invalid filter error")
	}
}

func TestCategoryMatches(t *testing.T) {
	t.Parallel()

	if !CategoryAll.Matches(CategoryHealth) {
		t.Fatalf("ALL must match every category")
	}
	if CategoryWork.Matches(CategoryHealth) {
		t.Fatalf("TRABAJO must not match SALUD")
	}
	if !CategoryWork.Matches(CategoryWork) {
		t.Fatalf("TRABAJO must match itself")
	}
}
