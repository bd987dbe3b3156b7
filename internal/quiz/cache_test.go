package quiz_test

import (
	"context"
	"testing"

	"github.com/kambaz-edu/kambaz-server/internal/quiz"
)

type fakeCache struct {
	data map[string][]byte
	hits int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	d, ok := f.data[key]
	if ok {
		f.hits++
	}
	return d, ok
}

func (f *fakeCache) Set(_ context.Context, key string, data []byte) error {
	f.data[key] = data
	return nil
}

func (f *fakeCache) Del(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func TestCachedStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := quiz.NewInMemoryStore()
	fc := newFakeCache()
	store := quiz.NewCachedStore(inner, fc)

	seed := publishedQuiz("q1", quiz.DefaultSettings(), mcqQuestion("q1q1", 1))
	if _, err := store.PutQuiz(ctx, seed); err != nil {
		t.Fatalf("put: %v", err)
	}

	// first read populates, second read hits
	if _, err := store.GetQuiz(ctx, "q1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	got, err := store.GetQuiz(ctx, "q1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fc.hits != 1 {
		t.Errorf("cache hits: got %d, want 1", fc.hits)
	}
	if got.ID != "q1" || len(got.Questions) != 1 {
		t.Errorf("cached quiz mismatch: %+v", got)
	}
}

func TestCachedStoreInvalidation(t *testing.T) {
	ctx := context.Background()
	inner := quiz.NewInMemoryStore()
	fc := newFakeCache()
	store := quiz.NewCachedStore(inner, fc)

	seed := publishedQuiz("q1", quiz.DefaultSettings())
	if _, err := store.PutQuiz(ctx, seed); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.GetQuiz(ctx, "q1"); err != nil {
		t.Fatalf("warm: %v", err)
	}

	seed.Title = "Renamed"
	if _, err := store.PutQuiz(ctx, seed); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.GetQuiz(ctx, "q1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("stale cache after update: %q", got.Title)
	}

	if _, err := store.SetPublished(ctx, "q1", false, "f1"); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	got, err = store.GetQuiz(ctx, "q1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Published {
		t.Error("stale cache after unpublish")
	}

	if err := store.DeleteQuiz(ctx, "q1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := fc.data["quiz:q1"]; ok {
		t.Error("cache entry survives delete")
	}
}
