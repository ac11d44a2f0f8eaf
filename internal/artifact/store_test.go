package artifact_test

import (
	"sync"
	"testing"

	"reelsmith/internal/artifact"
)

func TestBeginThenFailRecordsErrorOnly(t *testing.T) {
	store := artifact.New("images")
	store.Begin("k")
	store.Fail("k", "quota exceeded")

	entry, ok := store.Get("k")
	if !ok {
		t.Fatal("expected entry")
	}
	if entry.IsLoading || entry.Payload != "" || entry.Error != "quota exceeded" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	store.Begin("k")
	entry, _ = store.Get("k")
	if !entry.IsLoading || entry.Payload != "" || entry.Error != "" {
		t.Fatalf("expected begin to clear payload and error, got %+v", entry)
	}
}

func TestBeginSupersedesPayload(t *testing.T) {
	store := artifact.New("images")
	store.Begin("k").Complete("data:image/png;base64,AAA")
	if entry, _ := store.Get("k"); !entry.Ready() {
		t.Fatalf("expected ready entry, got %+v", entry)
	}
	store.Begin("k")
	if entry, _ := store.Get("k"); entry.Payload != "" || entry.Status() != "loading" {
		t.Fatalf("expected loading entry, got %+v", entry)
	}
}

func TestStaleAttemptIsDropped(t *testing.T) {
	store := artifact.New("images")
	first := store.Begin("k")
	second := store.Begin("k")

	if first.Current() {
		t.Fatal("first attempt should be superseded")
	}
	if first.Complete("stale") {
		t.Fatal("stale completion should be rejected")
	}
	if entry, _ := store.Get("k"); !entry.IsLoading {
		t.Fatalf("stale completion overwrote newer attempt: %+v", entry)
	}
	if !second.Complete("fresh") {
		t.Fatal("current attempt should apply")
	}
	if first.Fail("late failure") {
		t.Fatal("stale failure should be rejected")
	}
	if entry, _ := store.Get("k"); entry.Payload != "fresh" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestRawCompleteOnIdleKeyIsLastWriteWins(t *testing.T) {
	store := artifact.New("vbee")
	store.Complete("scene-1", "https://audio/1.mp3")
	store.Fail("scene-1", "")
	entry, _ := store.Get("scene-1")
	if entry.Payload != "" || entry.Error != "generation failed" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	store := artifact.New("images")
	a := store.Begin("a")
	b := store.Begin("b")
	a.Fail("boom")
	if store.Loading() != 1 {
		t.Fatalf("expected one key still loading, got %d", store.Loading())
	}
	b.Complete("ok")
	if entry, _ := store.Get("b"); entry.Payload != "ok" {
		t.Fatalf("unexpected entry for b: %+v", entry)
	}
	if got := store.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected keys %v", got)
	}
}

func TestRestoreSettlesLoadingAndInvalidatesAttempts(t *testing.T) {
	store := artifact.New("images")
	pending := store.Begin("old")

	store.Restore(map[string]artifact.Entry{
		"x": {IsLoading: true},
		"y": {Payload: "p"},
	})
	if entry, _ := store.Get("x"); entry.IsLoading {
		t.Fatal("restored entry should not be loading")
	}
	if pending.Complete("late") {
		t.Fatal("attempt from before restore should be invalid")
	}
	if _, ok := store.Get("old"); ok {
		t.Fatal("restore should replace contents")
	}

	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestObserverSeesEveryMutation(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	store := artifact.New("images", artifact.WithObserver(func(name, key string, entry artifact.Entry) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, name+"/"+key+"/"+entry.Status())
	}))
	attempt := store.Begin("k")
	attempt.Complete("x")
	store.Begin("k").Complete("y")
	attempt.Fail("stale")

	want := []string{"images/k/loading", "images/k/ready", "images/k/loading", "images/k/ready"}
	if len(seen) != len(want) {
		t.Fatalf("unexpected notifications %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("notification %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestConcurrentAttemptsOnDistinctKeys(t *testing.T) {
	store := artifact.New("images")
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		key := string(rune('a' + i%26))
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Begin(key).Complete("ok")
		}()
	}
	wg.Wait()
	if store.Loading() != 0 {
		t.Fatalf("expected no loading keys, got %d", store.Loading())
	}
}
