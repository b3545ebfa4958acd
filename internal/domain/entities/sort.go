package entities

import (
	"fmt"
	"strings"
)

// SortDirection is 1 for ascending and -1 for descending
type SortDirection int

const (
	SortAscending  SortDirection = 1
	SortDescending SortDirection = -1
)

// Fields every facility listing sorts on regardless of caller input.
const (
	SortFieldPriority = "priority"
	SortFieldTown     = "town"
	SortFieldName     = "name"
)

// SortField is one (field, direction) pair
type SortField struct {
	Field     string
	Direction SortDirection
}

// SortCriteria is an ordered list of sort keys
type SortCriteria []SortField

// Valid reports whether d is one of the two accepted directions
func (d SortDirection) Valid() bool {
	return d == SortAscending || d == SortDescending
}

// Validate checks every entry has a field name and a valid direction
func (c SortCriteria) Validate() error {
	for _, s := range c {
		if s.Field == "" {
			return fmt.Errorf("sort field must not be empty")
		}
		if !s.Direction.Valid() {
			return fmt.Errorf("sort direction for %q must be 1 or -1, got %d", s.Field, s.Direction)
		}
	}
	return nil
}

// WithFacilityDefaults merges caller criteria with the mandatory facility
// ordering: priority descending first, then the caller's keys, then town and
// name ascending as tie-breaks. Caller entries for priority are dropped and
// a caller entry for town or name keeps its direction and position.
func (c SortCriteria) WithFacilityDefaults() SortCriteria {
	merged := SortCriteria{{Field: SortFieldPriority, Direction: SortDescending}}
	seen := map[string]bool{SortFieldPriority: true}

	for _, s := range c {
		if seen[s.Field] {
			continue
		}
		seen[s.Field] = true
		merged = append(merged, s)
	}

	for _, field := range []string{SortFieldTown, SortFieldName} {
		if !seen[field] {
			merged = append(merged, SortField{Field: field, Direction: SortAscending})
		}
	}

	return merged
}

// ParseSortCriteria parses "field:asc,other:desc" style input. A field without
// a direction sorts ascending.
func ParseSortCriteria(raw string) (SortCriteria, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var criteria SortCriteria
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, dir, _ := strings.Cut(part, ":")
		field = strings.TrimSpace(field)

		direction := SortAscending
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc", "1":
		case "desc", "-1":
			direction = SortDescending
		default:
			return nil, fmt.Errorf("invalid sort direction %q for field %q", dir, field)
		}
		criteria = append(criteria, SortField{Field: field, Direction: direction})
	}

	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	return criteria, nil
}
