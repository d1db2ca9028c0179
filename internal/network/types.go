package network

import (
	"regexp"
	"strings"
)

// Stop is one addressable waypoint belonging to a network.
//
// UUID is the stable external identifier; Label is display text only and
// is never used as a key.
type Stop struct {
	UUID  string `json:"uuid"`
	Label string `json:"label"`
}

// Entry is the registry record for one elevator network.
//
// Stop order encodes floor numbering: the first stored stop is the
// highest floor, the last is floor 1. Entries are exclusively owned and
// mutated by the authority; all other clients read them.
type Entry struct {
	NetworkID string `json:"networkId"`

	// HomeUUID is the canonical base stop. Empty means "first stop".
	HomeUUID string `json:"homeUuid,omitempty"`

	Stops []Stop `json:"stops"`

	// Shared presentation attributes applied to every member stop.
	Icon          string  `json:"icon,omitempty"`
	IconSize      float64 `json:"iconSize,omitempty"`
	AlwaysVisible bool    `json:"alwaysVisible,omitempty"`
	Theme         string  `json:"theme,omitempty"`
}

// namePrefixPattern matches a display name prefix this module generated
// itself: "<networkID> NN ". Stripping it during normalization prevents
// prefixes compounding across repeated syncs.
var namePrefixPattern = regexp.MustCompile(`^\S+ \d{2} `)

// Normalized returns a copy of the entry with a cleaned stop list:
// labels trimmed, self-generated naming prefixes stripped, and duplicate
// UUIDs dropped (first occurrence wins).
func (e *Entry) Normalized() *Entry {
	cleaned := *e
	cleaned.Stops = make([]Stop, 0, len(e.Stops))

	seen := make(map[string]bool, len(e.Stops))
	for _, stop := range e.Stops {
		if stop.UUID == "" || seen[stop.UUID] {
			continue
		}
		seen[stop.UUID] = true

		label := strings.TrimSpace(stop.Label)
		label = StripNamePrefix(label, e.NetworkID)
		cleaned.Stops = append(cleaned.Stops, Stop{UUID: stop.UUID, Label: label})
	}

	return &cleaned
}

// StripNamePrefix removes a generated "<networkID> NN " prefix from a
// label, if present. Labels that merely resemble the pattern but name a
// different network are left alone.
func StripNamePrefix(label, networkID string) string {
	match := namePrefixPattern.FindString(label)
	if match == "" {
		return label
	}
	if !strings.HasPrefix(match, networkID+" ") {
		return label
	}
	return strings.TrimSpace(label[len(match):])
}

// Floor returns the floor number for the stop at the given index.
// Index 0 is the highest floor: Floor(0) == len(stops).
func (e *Entry) Floor(index int) int {
	return len(e.Stops) - index
}

// Home returns the entry's home stop: the stop matching HomeUUID, or the
// first stop when HomeUUID is empty or stale. Returns false if the entry
// has no stops.
func (e *Entry) Home() (Stop, bool) {
	if len(e.Stops) == 0 {
		return Stop{}, false
	}
	if e.HomeUUID != "" {
		for _, s := range e.Stops {
			if s.UUID == e.HomeUUID {
				return s, true
			}
		}
	}
	return e.Stops[0], true
}

// FloorOf returns the floor number for the stop with the given UUID.
// Returns false if no such stop is a member of the entry.
func (e *Entry) FloorOf(uuid string) (int, bool) {
	for i, s := range e.Stops {
		if s.UUID == uuid {
			return e.Floor(i), true
		}
	}
	return 0, false
}

// ContainsStop reports whether the entry has a stop with the given UUID.
func (e *Entry) ContainsStop(uuid string) bool {
	for _, s := range e.Stops {
		if s.UUID == uuid {
			return true
		}
	}
	return false
}
