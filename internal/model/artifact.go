package model

// Location is where an artifact is meant to end up, relative to the storage root
type Location struct {
	RelativePath string `json:"relativePath"` // e.g., Download/Robot Scouter/Export_1700000000000
	DisplayName  string `json:"displayName"`  // file name including extension
	MimeType     string `json:"mimeType"`
}

// Artifact is one rendered file waiting to be published
type Artifact struct {
	File     string   `json:"file"` // rendered bytes on local disk
	Location Location `json:"location"`
}

// Workspace is the per-run scratch area handed to renderers
type Workspace struct {
	Dir          string `json:"dir"`          // scratch directory renderers write into
	RelativePath string `json:"relativePath"` // location artifacts are published under
	Destination  string `json:"destination"`  // human readable publish destination
}
