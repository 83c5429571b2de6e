// Package crawler defines core types shared across subsystems.
package crawler

import (
	"errors"
	"time"
)

// Player is one extracted entity. URL doubles as the identity key for the
// player store, so collection rows and detail pages merge into one record.
type Player struct {
	URL         string `json:"url"`
	Name        string `json:"name,omitempty"`
	Team        string `json:"team,omitempty"`
	Position    string `json:"position,omitempty"`
	Number      string `json:"number,omitempty"`
	Height      string `json:"height,omitempty"`
	Weight      string `json:"weight,omitempty"`
	BirthDate   string `json:"birth_date,omitempty"`
	Nationality string `json:"nationality,omitempty"`
}

// Merge overlays the non-empty fields of partial onto p and returns the
// result. The receiver is not modified.
func (p Player) Merge(partial Player) Player {
	merged := p
	if partial.URL != "" {
		merged.URL = partial.URL
	}
	if partial.Name != "" {
		merged.Name = partial.Name
	}
	if partial.Team != "" {
		merged.Team = partial.Team
	}
	if partial.Position != "" {
		merged.Position = partial.Position
	}
	if partial.Number != "" {
		merged.Number = partial.Number
	}
	if partial.Height != "" {
		merged.Height = partial.Height
	}
	if partial.Weight != "" {
		merged.Weight = partial.Weight
	}
	if partial.BirthDate != "" {
		merged.BirthDate = partial.BirthDate
	}
	if partial.Nationality != "" {
		merged.Nationality = partial.Nationality
	}
	return merged
}

// Item is one unit of crawl work. The scheduler owns every Item exclusively;
// Tries and DispatchedAt are only touched between a completion and the next
// dispatch.
type Item struct {
	URL          string
	Tries        int
	DispatchedAt time.Time
}

// FetchResult is the parser's output for one successfully fetched page.
// Rosters carries the collection-page entities, Profile the detail-page
// entity (at most one per page). NextURLs lists the onward links in document
// order regardless of which entity kind the page produced.
type FetchResult struct {
	Rosters  []Player
	Profile  *Player
	NextURLs []string
}

// FetchResponse is returned by a Fetcher implementation. URL holds the final
// URL after redirects.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// ErrInvalidOutcome signals an Outcome built with neither result nor error
// (or both). It marks a wiring bug, never a runtime condition to retry.
var ErrInvalidOutcome = errors.New("outcome requires exactly one of result or error")

// Outcome is the terminal record written to the sink for an Item.
type Outcome struct {
	URL    string  `json:"url"`
	Tries  int     `json:"tries"`
	Result *Player `json:"result"`
	Error  string  `json:"error,omitempty"`
}

// Validate enforces the exactly-one-of-result-or-error invariant.
func (o Outcome) Validate() error {
	if (o.Result == nil) == (o.Error == "") {
		return ErrInvalidOutcome
	}
	return nil
}
