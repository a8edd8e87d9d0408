package valueobject

import (
	"errors"
	"strings"
)

// Region identifies an artisan cluster location as a district/state pair.
// Matching is case-insensitive; the canonical form trims surrounding
// whitespace but preserves the original casing for display.
type Region struct {
	district string
	state    string
}

// NewRegion creates a Region from a district and state
func NewRegion(district, state string) (Region, error) {
	district = strings.TrimSpace(district)
	state = strings.TrimSpace(state)
	if district == "" {
		return Region{}, errors.New("district cannot be empty")
	}
	if state == "" {
		return Region{}, errors.New("state cannot be empty")
	}
	return Region{district: district, state: state}, nil
}

// District returns the district name
func (r Region) District() string {
	return r.district
}

// State returns the state name
func (r Region) State() string {
	return r.state
}

// IsZero returns true if the region is the zero value
func (r Region) IsZero() bool {
	return r.district == "" && r.state == ""
}

// Matches reports whether another region refers to the same district and
// state, ignoring case.
func (r Region) Matches(other Region) bool {
	return strings.EqualFold(r.district, other.district) &&
		strings.EqualFold(r.state, other.state)
}

// Key returns a normalized lowercase key suitable for grouping
func (r Region) Key() string {
	return strings.ToLower(r.district) + "|" + strings.ToLower(r.state)
}

// String returns "District, State"
func (r Region) String() string {
	return r.district + ", " + r.state
}
