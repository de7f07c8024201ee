package model

import (
	"cmp"
	"slices"
	"strconv"
	"time"
)

// Team is a unit whose scouts are exported
type Team struct {
	ID     string `json:"id"`
	Number int64  `json:"number"`
	Name   string `json:"name,omitempty"`
}

// String returns the team number, falling back to the id for unnumbered teams
func (t Team) String() string {
	if t.Number > 0 {
		return strconv.FormatInt(t.Number, 10)
	}
	return t.ID
}

// CompareTeams orders teams by number, then id.
func CompareTeams(a, b Team) int {
	if c := cmp.Compare(a.Number, b.Number); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortTeams returns a sorted copy of teams.
func SortTeams(teams []Team) []Team {
	sorted := slices.Clone(teams)
	slices.SortStableFunc(sorted, CompareTeams)
	return sorted
}

// Metric is a single scouted value
type Metric struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Type  string      `json:"type"` // e.g., checkbox, counter, text, stopwatch
	Value interface{} `json:"value"`
}

// Scout is one record belonging to a team and a template
type Scout struct {
	ID         string    `json:"id"`
	TeamID     string    `json:"teamId"`
	TemplateID string    `json:"templateId"`
	Name       string    `json:"name,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Metrics    []Metric  `json:"metrics"`
}

// Template is a user-defined group. Name is nil when the template was never named.
type Template struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
}

// TeamRecords pairs a team with the scouts fetched for it
type TeamRecords struct {
	Team   Team    `json:"team"`
	Scouts []Scout `json:"scouts"`
}

// Group is every scout of one template, keyed by owning team in team order
type Group struct {
	ID    string        `json:"id"`
	Teams []TeamRecords `json:"teams"`
}

// Count returns the number of scouts in the group
func (g Group) Count() int {
	n := 0
	for _, tr := range g.Teams {
		n += len(tr.Scouts)
	}
	return n
}
