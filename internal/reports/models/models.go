package models

import (
	id "dvi/pkg/domain"
)

// MorgueCount is the number of bodies held by one morgue.
type MorgueCount struct {
	Morgue id.MorgueID `json:"morgue"`
	Name   string      `json:"name"`
	Bodies int         `json:"bodies"`
}

// MorgueCounts lists per-morgue counts plus bodies with no morgue.
type MorgueCounts struct {
	Morgues    []MorgueCount `json:"morgues"`
	Unassigned int           `json:"unassigned"`
}

// RequestCount compares bodies found, recovered and registered for a request.
type RequestCount struct {
	Request         id.RecoveryRequestID `json:"recovery_request"`
	Marker          string               `json:"marker"`
	BodiesFound     int                  `json:"bodies_found"`
	BodiesRecovered int                  `json:"bodies_recovered"`
	Bodies          int                  `json:"bodies"`
}

// Distribution counts bodies by effective identification status.
type Distribution struct {
	Confirmed    int `json:"confirmed"`
	Preliminary  int `json:"preliminary"`
	Unidentified int `json:"unidentified"`
}

func (d Distribution) Total() int { return d.Confirmed + d.Preliminary + d.Unidentified }

// Summary bundles all three aggregates.
type Summary struct {
	Morgues        MorgueCounts   `json:"morgues"`
	Requests       []RequestCount `json:"recovery_requests"`
	Identification Distribution   `json:"identification"`
}
