package entity

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CoreUpdateID is the well-known update entity for Home Assistant Core.
const CoreUpdateID = "update.home_assistant_core_update"

// ServerConfig mirrors the payload returned by /api/config.
type ServerConfig struct {
	LocationName string  `json:"location_name"`
	Version      string  `json:"version"`
	State        string  `json:"state"`
	TimeZone     string  `json:"time_zone"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// State describes a single entity from /api/states.
type State struct {
	EntityID    string     `json:"entity_id"`
	State       string     `json:"state"`
	Attributes  Attributes `json:"attributes"`
	LastChanged string     `json:"last_changed"`
	LastUpdated string     `json:"last_updated"`
}

// Attributes holds the subset of entity attributes Otter reads. Every field
// is optional on the wire.
type Attributes struct {
	FriendlyName      string `json:"friendly_name,omitempty"`
	UnitOfMeasurement string `json:"unit_of_measurement,omitempty"`
	DeviceClass       string `json:"device_class,omitempty"`
	InstalledVersion  string `json:"installed_version,omitempty"`
	LatestVersion     string `json:"latest_version,omitempty"`
	EntityPicture     string `json:"entity_picture,omitempty"`
	ReleaseURL        string `json:"release_url,omitempty"`
}

// Domain returns the entity id segment before the first dot.
func Domain(entityID string) string {
	domain, _, _ := strings.Cut(entityID, ".")
	return domain
}

// Domain returns the domain of the entity.
func (s State) Domain() string {
	return Domain(s.EntityID)
}

// ObjectID returns the entity id segment after the last dot.
func (s State) ObjectID() string {
	if idx := strings.LastIndex(s.EntityID, "."); idx >= 0 {
		return s.EntityID[idx+1:]
	}
	return s.EntityID
}

// FriendlyName returns the friendly_name attribute, or a readable form of the
// object id when the attribute is missing.
func (s State) FriendlyName() string {
	if s.Attributes.FriendlyName != "" {
		return s.Attributes.FriendlyName
	}
	return capitalize(strings.ReplaceAll(s.ObjectID(), "_", " "))
}

// DisplayState renders the state with its unit, or capitalised when unitless.
func (s State) DisplayState() string {
	if s.Attributes.UnitOfMeasurement != "" {
		return s.State + " " + s.Attributes.UnitOfMeasurement
	}
	return capitalize(s.State)
}

// Value parses the state as a number.
func (s State) Value() (float64, bool) {
	return ParseNumber(s.State)
}

func capitalize(value string) string {
	// Casers are stateful, so one per call.
	return cases.Title(language.Und).String(value)
}

// Find returns the entity with the exact id.
func Find(states []State, entityID string) (State, bool) {
	if entityID == "" {
		return State{}, false
	}
	for _, s := range states {
		if s.EntityID == entityID {
			return s, true
		}
	}
	return State{}, false
}

// GroupByDomain buckets entities by domain, keeping snapshot order inside each
// bucket. Ids without a domain land under "other".
func GroupByDomain(states []State) map[string][]State {
	groups := make(map[string][]State)
	for _, s := range states {
		domain := s.Domain()
		if domain == "" || !strings.Contains(s.EntityID, ".") {
			domain = "other"
		}
		groups[domain] = append(groups[domain], s)
	}
	return groups
}

// Domains returns the sorted list of domains present in states.
func Domains(states []State) []string {
	groups := GroupByDomain(states)
	out := make([]string, 0, len(groups))
	for domain := range groups {
		out = append(out, domain)
	}
	sort.Strings(out)
	return out
}

// Filter narrows states to a domain (empty matches all) and a case-insensitive
// query against the entity id or friendly name.
func Filter(states []State, domain, query string) []State {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]State, 0, len(states))
	for _, s := range states {
		if domain != "" && !strings.HasPrefix(s.EntityID, domain+".") {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(s.EntityID), query) &&
			!strings.Contains(strings.ToLower(s.FriendlyName()), query) {
			continue
		}
		out = append(out, s)
	}
	return out
}
