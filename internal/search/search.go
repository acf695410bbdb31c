package search

import (
	"log/slog"
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mwenda/somo/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Result is a unit match with highlight metadata
type Result struct {
	Entry          domain.UnitCacheEntry
	MatchedIndexes []int // Character positions in the title that matched
	Score          int   // Higher is better (sahilm/fuzzy convention)
}

// unitIndex implements fuzzy.Source for zero-allocation matching
type unitIndex struct {
	entries     []domain.UnitCacheEntry
	lowerTitles []string
}

func (idx *unitIndex) String(i int) string { return idx.lowerTitles[i] }
func (idx *unitIndex) Len() int            { return len(idx.entries) }

// Service handles fuzzy search over the cached unit index. Reads are
// cache-only and never block on network.
type Service struct {
	store  domain.Store
	logger *slog.Logger
}

// NewService creates a new search service
func NewService(store domain.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Filter matches cached units against a query. Title matches rank first;
// when nothing matches a title, descriptions are tried as a fallback so
// "greetings" still finds a unit described as such.
func (s *Service) Filter(query string) []Result {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil
	}

	entries, err := s.store.ListUnits()
	if err != nil || len(entries) == 0 {
		return nil
	}

	idx := &unitIndex{
		entries:     entries,
		lowerTitles: make([]string, len(entries)),
	}
	for i, e := range entries {
		idx.lowerTitles[i] = strings.ToLower(e.Title)
	}

	matches := fuzzy.FindFrom(query, idx)
	if len(matches) > 0 {
		results := make([]Result, len(matches))
		for i, m := range matches {
			results[i] = Result{
				Entry:          entries[m.Index],
				MatchedIndexes: m.MatchedIndexes,
				Score:          m.Score,
			}
		}
		return results
	}

	return s.filterDescriptions(query, entries)
}

// filterDescriptions is the fallback pass over unit descriptions
func (s *Service) filterDescriptions(query string, entries []domain.UnitCacheEntry) []Result {
	descriptions := make([]string, len(entries))
	for i, e := range entries {
		descriptions[i] = e.Description
	}

	ranks := lfuzzy.RankFindNormalizedFold(query, descriptions)
	if len(ranks) == 0 {
		return nil
	}
	sort.Sort(ranks)

	results := make([]Result, 0, len(ranks))
	for _, r := range ranks {
		results = append(results, Result{
			Entry: entries[r.OriginalIndex],
			Score: -r.Distance,
		})
	}
	return results
}
