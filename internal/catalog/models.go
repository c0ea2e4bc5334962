package catalog

import "time"

// Record is a single catalogued item. ID and the timestamps are assigned by
// the store; callers never set them.
type Record struct {
	ID             string
	ScanCode       string
	Title          string
	ReleaseDate    string // YYYY-MM-DD, empty when unknown
	Overview       string
	PosterURL      string
	BackdropURL    string
	RuntimeMinutes int
	Genres         []string
	Cast           []string // billing order
	Director       string
	Rating         string
	AddedAt        time.Time
	LastModifiedAt time.Time
}

// Clone returns a deep copy so callers can edit candidates without aliasing
// store-owned slices.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Genres = append([]string(nil), r.Genres...)
	clone.Cast = append([]string(nil), r.Cast...)
	return &clone
}

// Stats summarizes the catalog for CLI output.
type Stats struct {
	Total  int
	Genres map[string]int
}

// merge folds candidate fields into an existing record. Candidate fields win;
// zero-valued candidate fields preserve what the store already has. Identity
// and creation time always come from the existing record.
func merge(existing, candidate *Record) *Record {
	merged := existing.Clone()
	if candidate.ScanCode != "" {
		merged.ScanCode = candidate.ScanCode
	}
	if candidate.Title != "" {
		merged.Title = candidate.Title
	}
	if candidate.ReleaseDate != "" {
		merged.ReleaseDate = candidate.ReleaseDate
	}
	if candidate.Overview != "" {
		merged.Overview = candidate.Overview
	}
	if candidate.PosterURL != "" {
		merged.PosterURL = candidate.PosterURL
	}
	if candidate.BackdropURL != "" {
		merged.BackdropURL = candidate.BackdropURL
	}
	if candidate.RuntimeMinutes > 0 {
		merged.RuntimeMinutes = candidate.RuntimeMinutes
	}
	if len(candidate.Genres) > 0 {
		merged.Genres = append([]string(nil), candidate.Genres...)
	}
	if len(candidate.Cast) > 0 {
		merged.Cast = append([]string(nil), candidate.Cast...)
	}
	if candidate.Director != "" {
		merged.Director = candidate.Director
	}
	if candidate.Rating != "" {
		merged.Rating = candidate.Rating
	}
	return merged
}
