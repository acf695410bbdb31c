package search

import (
	"testing"

	"github.com/mwenda/somo/internal/adapter"
	"github.com/mwenda/somo/internal/domain"
	"github.com/mwenda/somo/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := store.NewCacheStore("", "")
	if err != nil {
		t.Fatalf("NewCacheStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	err = s.UpsertMetadata([]domain.UnitMetadata{
		{ID: "u1", Title: "The Alphabet", Description: "Letters and their sounds"},
		{ID: "u2", Title: "Everyday Greetings", Description: "Saying hello and goodbye"},
		{ID: "u3", Title: "Numbers", Description: "Counting from one to ten"},
		{ID: "u4", Title: "At the Market", Description: "Buying and bargaining"},
	})
	if err != nil {
		t.Fatalf("UpsertMetadata() error = %v", err)
	}

	return NewService(s, adapter.NullLogger())
}

func TestService_Filter_TitleMatch(t *testing.T) {
	svc := newTestService(t)

	results := svc.Filter("alphabet")
	if len(results) != 1 {
		t.Fatalf("Filter(alphabet) = %d results, expected 1", len(results))
	}
	if results[0].Entry.ID != "u1" {
		t.Errorf("Filter(alphabet)[0].ID = %s, expected u1", results[0].Entry.ID)
	}
	if len(results[0].MatchedIndexes) == 0 {
		t.Error("title match should carry highlight indexes")
	}
}

func TestService_Filter_IsCaseInsensitive(t *testing.T) {
	svc := newTestService(t)

	results := svc.Filter("GREETINGS")
	if len(results) != 1 || results[0].Entry.ID != "u2" {
		t.Errorf("Filter(GREETINGS) = %+v, expected u2", results)
	}
}

func TestService_Filter_FuzzySubsequence(t *testing.T) {
	svc := newTestService(t)

	// "mrkt" is a subsequence of "at the market"
	results := svc.Filter("mrkt")
	if len(results) == 0 {
		t.Fatal("Filter(mrkt) returned no results")
	}
	if results[0].Entry.ID != "u4" {
		t.Errorf("Filter(mrkt)[0].ID = %s, expected u4", results[0].Entry.ID)
	}
}

func TestService_Filter_DescriptionFallback(t *testing.T) {
	svc := newTestService(t)

	// "goodbye" appears only in a description, never in a title
	results := svc.Filter("goodbye")
	if len(results) == 0 {
		t.Fatal("Filter(goodbye) returned no results")
	}
	if results[0].Entry.ID != "u2" {
		t.Errorf("Filter(goodbye)[0].ID = %s, expected u2", results[0].Entry.ID)
	}
	if len(results[0].MatchedIndexes) != 0 {
		t.Error("description matches carry no title highlight indexes")
	}
}

func TestService_Filter_EmptyAndNoMatch(t *testing.T) {
	svc := newTestService(t)

	if results := svc.Filter(""); results != nil {
		t.Errorf("Filter(\"\") = %v, expected nil", results)
	}
	if results := svc.Filter("   "); results != nil {
		t.Errorf("Filter(whitespace) = %v, expected nil", results)
	}
	if results := svc.Filter("xyzzyqwopp"); len(results) != 0 {
		t.Errorf("Filter(gibberish) = %v, expected none", results)
	}
}
