package pooling

import (
	"strings"

	"github.com/craftbridge/backend/internal/domain/shared"
)

// Hub is a regional consolidation point where pooled packages are
// physically combined before onward shipment.
type Hub struct {
	City      string  `json:"city" mapstructure:"city"`
	Latitude  float64 `json:"latitude" mapstructure:"latitude"`
	Longitude float64 `json:"longitude" mapstructure:"longitude"`
}

// HubResolution is the result of a hub lookup. UsedDefault distinguishes
// a mapped state from the fallback hub.
type HubResolution struct {
	Hub         Hub
	State       string
	UsedDefault bool
}

// HubDirectory maps states to their nearest consolidation hub. Immutable
// after construction; the lookup is total via a fallback hub.
type HubDirectory struct {
	byState  map[string]Hub
	fallback Hub
}

// NewHubDirectory builds a directory from a state-to-hub table and a
// fallback hub for unmapped states. State keys match case-insensitively.
func NewHubDirectory(byState map[string]Hub, fallback Hub) (*HubDirectory, error) {
	if fallback.City == "" {
		return nil, shared.ErrConfiguration.WithDetails("fallback hub city cannot be empty")
	}
	normalized := make(map[string]Hub, len(byState))
	for state, hub := range byState {
		if hub.City == "" {
			return nil, shared.ErrConfiguration.WithDetails("hub city cannot be empty for state " + state)
		}
		normalized[strings.ToLower(strings.TrimSpace(state))] = hub
	}
	return &HubDirectory{byState: normalized, fallback: fallback}, nil
}

// DefaultHubDirectory returns the standard hub table of major
// consolidation cities by state, with Delhi as the fallback.
func DefaultHubDirectory() *HubDirectory {
	dir, err := NewHubDirectory(map[string]Hub{
		"Rajasthan":     {City: "Jaipur", Latitude: 26.9124, Longitude: 75.7873},
		"Gujarat":       {City: "Ahmedabad", Latitude: 23.0225, Longitude: 72.5714},
		"West Bengal":   {City: "Kolkata", Latitude: 22.5726, Longitude: 88.3639},
		"Tamil Nadu":    {City: "Chennai", Latitude: 13.0827, Longitude: 80.2707},
		"Karnataka":     {City: "Bangalore", Latitude: 12.9716, Longitude: 77.5946},
		"Maharashtra":   {City: "Mumbai", Latitude: 19.0760, Longitude: 72.8777},
		"Uttar Pradesh": {City: "Lucknow", Latitude: 26.8467, Longitude: 80.9462},
		"Kashmir":       {City: "Srinagar", Latitude: 34.0837, Longitude: 74.7973},
		"Odisha":        {City: "Bhubaneswar", Latitude: 20.2961, Longitude: 85.8245},
	}, Hub{City: "Delhi", Latitude: 28.7041, Longitude: 77.1025})
	if err != nil {
		panic(err)
	}
	return dir
}

// Resolve returns the consolidation hub for a state. Unmapped states get
// the fallback hub with UsedDefault set; the lookup never fails.
func (d *HubDirectory) Resolve(state string) HubResolution {
	if hub, ok := d.byState[strings.ToLower(strings.TrimSpace(state))]; ok {
		return HubResolution{Hub: hub, State: state}
	}
	return HubResolution{Hub: d.fallback, State: state, UsedDefault: true}
}
