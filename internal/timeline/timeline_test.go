package timeline

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPost_MatchableID(t *testing.T) {
	plain := Post{ID: 10}
	reshare := Post{ID: 11, Original: &Post{ID: 3}}

	if plain.IsReshare() || plain.OriginalID() != 0 || plain.MatchableID() != 10 {
		t.Fatalf("unexpected plain post identity: %+v", plain)
	}
	if !reshare.IsReshare() || reshare.OriginalID() != 3 || reshare.MatchableID() != 3 {
		t.Fatalf("unexpected reshare identity: %+v", reshare)
	}
	if !SamePost(reshare, Post{ID: 3}) {
		t.Fatal("expected reshare to match its original")
	}
	if reshare.Content().ID != 3 || plain.Content().ID != 10 {
		t.Fatal("unexpected content post")
	}
}

func TestForRefresh(t *testing.T) {
	c := ForRefresh(NewFeed())
	if c.Direction != Newer || c.PageSize != RefreshPageSize || c.HasBoundary {
		t.Fatalf("unexpected cursor for empty feed: %+v", c)
	}

	f := NewFeed()
	f.Items = []Post{{ID: 90, Original: &Post{ID: 12}}, {ID: 8}}
	c = ForRefresh(f)
	if !c.HasBoundary || c.BoundaryID != 12 {
		t.Fatalf("expected since boundary 12, got %+v", c)
	}
}

func TestForBackfill(t *testing.T) {
	if _, err := ForBackfill(NewFeed()); !errors.Is(err, ErrEmptyFeed) {
		t.Fatalf("expected ErrEmptyFeed, got %v", err)
	}

	f := feedOf(9, 8, 7)
	c, err := ForBackfill(f)
	if err != nil {
		t.Fatalf("ForBackfill returned error: %v", err)
	}
	want := Cursor{Direction: Older, BoundaryID: 7, HasBoundary: true, PageSize: BackfillPageSize}
	if c != want {
		t.Fatalf("expected %+v, got %+v", want, c)
	}
}

func TestGate_Exclusive(t *testing.T) {
	var changes []bool
	g := NewGate(func(inFlight bool) { changes = append(changes, inFlight) })

	if !g.TryAcquire() {
		t.Fatal("expected first acquire to succeed")
	}
	if g.TryAcquire() {
		t.Fatal("expected second acquire to fail")
	}
	if !g.InFlight() {
		t.Fatal("expected gate in flight")
	}
	g.Release()
	g.Release()
	if g.InFlight() {
		t.Fatal("expected gate released")
	}
	if !g.TryAcquire() {
		t.Fatal("expected acquire after release")
	}
	if !reflect.DeepEqual(changes, []bool{true, false, true}) {
		t.Fatalf("unexpected state changes: %v", changes)
	}
}

func TestGate_ConcurrentAcquire(t *testing.T) {
	g := NewGate(nil)
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := wins.Load(); got != 1 {
		t.Fatalf("expected exactly one winner, got %d", got)
	}
}

func TestShouldShowGoToTop_Threshold(t *testing.T) {
	f := feedOf(9, 8, 7, 6, 5, 4, 3)
	for i, p := range f.Items {
		want := i >= 4
		if got := ShouldShowGoToTop(p, f); got != want {
			t.Fatalf("index %d: expected %v, got %v", i, want, got)
		}
	}
	if ShouldShowGoToTop(Post{ID: 100}, f) {
		t.Fatal("expected false for unknown post")
	}
}

func TestShouldBackfill(t *testing.T) {
	f := feedOf(9, 8, 7)
	if ShouldBackfill(Post{ID: 8}, f) {
		t.Fatal("expected false when bottom is not the last item")
	}
	if !ShouldBackfill(Post{ID: 7, Text: "different copy"}, f) {
		t.Fatal("expected true when bottom matches the last item by id")
	}
	if ShouldBackfill(Post{ID: 7}, NewFeed()) {
		t.Fatal("expected false on empty feed")
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	f := NewFeed()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	Merge(f, []Post{
		{ID: 3, Author: "ann", Text: "hello", CreatedAt: created},
		{ID: 2, Author: "bob", Original: &Post{ID: 1, Author: "cy", Text: "orig", CreatedAt: created}},
	}, ForRefresh(f))

	data, err := EncodeSnapshot(f)
	if err != nil {
		t.Fatalf("EncodeSnapshot returned error: %v", err)
	}
	restored, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot returned error: %v", err)
	}
	if !reflect.DeepEqual(restored, f) {
		t.Fatalf("snapshot mismatch:\n got %+v\nwant %+v", restored, f)
	}
}

func TestDecodeSnapshot_Invalid(t *testing.T) {
	if _, err := DecodeSnapshot([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
	f, err := DecodeSnapshot([]byte(`{"items":null}`))
	if err != nil {
		t.Fatalf("DecodeSnapshot returned error: %v", err)
	}
	if f.Items == nil || !f.Empty() {
		t.Fatalf("expected empty non-nil items, got %#v", f.Items)
	}
}
