package model

import "time"

// Mode selects the export output
type Mode string

const (
	ModeSpreadsheet Mode = "spreadsheet" // one artifact per group
	ModeJSON        Mode = "json"        // one consolidated document
)

// MergePolicy decides how group-level JSON values are combined in JSON mode
type MergePolicy string

const (
	// MergeFirst keeps only the first non-null group value.
	MergeFirst MergePolicy = "first"
	// MergeAll concatenates every group value into one array.
	MergeAll MergePolicy = "merge"
)

// ExportJob is the span of one orchestration run
type ExportJob struct {
	ID            string        `json:"id"`
	Teams         []Team        `json:"teams"` // sorted before fetching
	Mode          Mode          `json:"mode"`
	ChunkSize     int           `json:"chunkSize"`
	FetchTimeout  time.Duration `json:"fetchTimeout"`  // zero disables
	RenderTimeout time.Duration `json:"renderTimeout"` // zero disables
	StartedAt     time.Time     `json:"startedAt"`
}

// State is a step of the export state machine
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateEmpty      State = "empty"
	StateGrouping   State = "grouping"
	StateResolving  State = "resolving"
	StateRendering  State = "rendering"
	StatePublishing State = "publishing"
	StateDone       State = "done"
	StateAborted    State = "aborted"
)

// Terminal reports whether no further transition can follow s
func (s State) Terminal() bool {
	return s == StateEmpty || s == StateDone || s == StateAborted
}
