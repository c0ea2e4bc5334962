package catalog

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SearchByTitle returns records whose title contains the query,
// case-insensitively. An empty query matches nothing.
func (s *Store) SearchByTitle(ctx context.Context, query string) ([]*Record, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []*Record{}, nil
	}
	records, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]*Record, 0)
	for _, record := range records {
		if strings.Contains(strings.ToLower(record.Title), query) {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

// SearchByCast returns records with at least one cast member whose name
// contains the query, case-insensitively. An empty query matches nothing.
func (s *Store) SearchByCast(ctx context.Context, query string) ([]*Record, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []*Record{}, nil
	}
	records, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]*Record, 0)
	for _, record := range records {
		for _, name := range record.Cast {
			if strings.Contains(strings.ToLower(name), query) {
				matches = append(matches, record)
				break
			}
		}
	}
	return matches, nil
}

// ListAllSortedByTitle returns every record ordered by title using
// locale-aware collation, so "Éternel" sorts with the Es instead of after Z.
func (s *Store) ListAllSortedByTitle(ctx context.Context) ([]*Record, error) {
	records, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	collator := collate.New(language.English)
	sort.SliceStable(records, func(i, j int) bool {
		return collator.CompareString(records[i].Title, records[j].Title) < 0
	})
	return records, nil
}
