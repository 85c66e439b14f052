package index

import "time"

// packageResponse represents the registry response from v1/packages/<name>.
type packageResponse struct {
	Name     string            `json:"name"`
	Summary  string            `json:"summary,omitempty"`
	Releases []releaseResponse `json:"releases"`
}

// releaseResponse represents one published release of a package.
type releaseResponse struct {
	Version  string `json:"version"`
	URL      string `json:"url"`
	Digest   string `json:"digest"`
	Size     int64  `json:"size"`
	Released string `json:"released,omitempty"`
}

// cacheEntry represents a cached registry response.
type cacheEntry struct {
	Response  packageResponse `json:"response"`
	Timestamp time.Time       `json:"timestamp"`
}
