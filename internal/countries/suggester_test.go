package countries

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type lookupFunc func(ctx context.Context, query string) ([]string, error)

func (f lookupFunc) ByName(ctx context.Context, query string) ([]string, error) {
	return f(ctx, query)
}

func TestFetchReplacesSuggestions(t *testing.T) {
	s := NewSuggester(lookupFunc(func(ctx context.Context, q string) ([]string, error) {
		return []string{"France", "French Guiana"}, nil
	}), time.Second)

	res := s.Fetch(context.Background(), "Fr")
	if res.Stale {
		t.Fatal("result should not be stale")
	}
	if want := []string{"France", "French Guiana"}; !reflect.DeepEqual(res.Suggestions, want) || !reflect.DeepEqual(s.Suggestions(), want) {
		t.Fatalf("suggestions = %v / %v", res.Suggestions, s.Suggestions())
	}
}

func TestFetchEmptyQueryClearsWithoutLookup(t *testing.T) {
	calls := 0
	s := NewSuggester(lookupFunc(func(ctx context.Context, q string) ([]string, error) {
		calls++
		return []string{"Spain"}, nil
	}), 0)

	s.Fetch(context.Background(), "Sp")
	res := s.Fetch(context.Background(), " ")
	if calls != 1 {
		t.Fatalf("lookup calls = %d, want 1", calls)
	}
	if len(res.Suggestions) != 0 || len(s.Suggestions()) != 0 {
		t.Fatalf("suggestions not cleared: %v", s.Suggestions())
	}
}

func TestFetchFailureClearsSilently(t *testing.T) {
	fail := false
	s := NewSuggester(lookupFunc(func(ctx context.Context, q string) ([]string, error) {
		if fail {
			return nil, errors.New("network down")
		}
		return []string{"Peru"}, nil
	}), time.Second)

	s.Fetch(context.Background(), "Pe")
	fail = true
	res := s.Fetch(context.Background(), "Per")
	if res.Stale || len(res.Suggestions) != 0 || len(s.Suggestions()) != 0 {
		t.Fatalf("failure should clear: %+v", res)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	slowStarted := make(chan struct{})
	var once sync.Once
	s := NewSuggester(lookupFunc(func(ctx context.Context, q string) ([]string, error) {
		if q == "F" {
			once.Do(func() { close(slowStarted) })
			<-ctx.Done()
			// A late answer for the old query must not win.
			return []string{"Fiji", "Finland", "France"}, nil
		}
		return []string{"France"}, nil
	}), 0)

	slow := make(chan Result, 1)
	go func() { slow <- s.Fetch(context.Background(), "F") }()
	<-slowStarted

	fresh := s.Fetch(context.Background(), "Fra")
	old := <-slow

	if !old.Stale {
		t.Fatalf("old result not marked stale: %+v", old)
	}
	if fresh.Stale || !reflect.DeepEqual(fresh.Suggestions, []string{"France"}) {
		t.Fatalf("fresh = %+v", fresh)
	}
	if !reflect.DeepEqual(s.Suggestions(), []string{"France"}) {
		t.Fatalf("suggestions = %v", s.Suggestions())
	}
	if old.Seq >= fresh.Seq {
		t.Fatalf("seq order: old %d fresh %d", old.Seq, fresh.Seq)
	}
}

func TestSelectClearsAndDiscardsInFlight(t *testing.T) {
	started := make(chan struct{})
	s := NewSuggester(lookupFunc(func(ctx context.Context, q string) ([]string, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}), 0)

	done := make(chan Result, 1)
	go func() { done <- s.Fetch(context.Background(), "Ch") }()
	<-started

	if got := s.Select("Chile"); got != "Chile" {
		t.Fatalf("select = %q", got)
	}
	if res := <-done; !res.Stale {
		t.Fatalf("in-flight fetch should be stale: %+v", res)
	}
	if len(s.Suggestions()) != 0 {
		t.Fatalf("suggestions = %v", s.Suggestions())
	}
}

func TestFetchTimeoutLeavesListCleared(t *testing.T) {
	s := NewSuggester(lookupFunc(func(ctx context.Context, q string) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), 10*time.Millisecond)

	res := s.Fetch(context.Background(), "Nor")
	if res.Stale || len(res.Suggestions) != 0 {
		t.Fatalf("timeout result = %+v", res)
	}
}

func TestSessionsEvictLeastRecentlyUsed(t *testing.T) {
	created := 0
	sessions := NewSessions(2, func() *Suggester {
		created++
		return NewSuggester(lookupFunc(func(ctx context.Context, q string) ([]string, error) { return nil, nil }), 0)
	})

	a := sessions.Get("a")
	sessions.Get("b")
	if sessions.Get("a") != a {
		t.Fatal("same key should return the same suggester")
	}
	sessions.Get("c") // evicts b
	if sessions.Len() != 2 {
		t.Fatalf("len = %d", sessions.Len())
	}
	if sessions.Get("a") != a {
		t.Fatal("a was evicted but b was least recently used")
	}
	before := created
	sessions.Get("b")
	if created != before+1 {
		t.Fatal("b should have been recreated")
	}
}
