package dataset

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-report/internal/model"
)

type countingLoader struct {
	calls int
	fail  error
}

func (l *countingLoader) load(path string) (*model.Dataset, error) {
	l.calls++
	if l.fail != nil {
		return nil, l.fail
	}
	return Load(path, LoadOptions{})
}

func TestCacheReusesUnchangedFile(t *testing.T) {
	path := writeFile(t, "marks.csv", sampleCSV)
	loader := &countingLoader{}
	cache := NewCache(loader.load, zerolog.Nop())

	first, err := cache.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := cache.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if loader.calls != 1 {
		t.Errorf("loader calls = %d, want 1", loader.calls)
	}
	if first != second {
		t.Error("expected the memoized dataset to be returned")
	}
}

func TestCacheReloadsWhenFileChanges(t *testing.T) {
	path := writeFile(t, "marks.csv", sampleCSV)
	loader := &countingLoader{}
	cache := NewCache(loader.load, zerolog.Nop())

	if _, err := cache.Get(path); err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Same size, new modification time.
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if _, err := cache.Get(path); err != nil {
		t.Fatalf("Get after touch: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("loader calls after touch = %d, want 2", loader.calls)
	}

	// New content, new size.
	if err := os.WriteFile(path, []byte(sampleCSV+"Carol,8,Math,Final,50\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	ds, err := cache.Get(path)
	if err != nil {
		t.Fatalf("Get after rewrite: %v", err)
	}
	if loader.calls != 3 {
		t.Errorf("loader calls after rewrite = %d, want 3", loader.calls)
	}
	if len(ds.Records) != 5 {
		t.Errorf("records after rewrite = %d, want 5", len(ds.Records))
	}
}

func TestCacheInvalidate(t *testing.T) {
	path := writeFile(t, "marks.csv", sampleCSV)
	loader := &countingLoader{}
	cache := NewCache(loader.load, zerolog.Nop())

	cache.Get(path)
	cache.Invalidate(path)
	cache.Get(path)

	if loader.calls != 2 {
		t.Errorf("loader calls = %d, want 2", loader.calls)
	}
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	path := writeFile(t, "marks.csv", sampleCSV)
	boom := errors.New("boom")
	loader := &countingLoader{fail: boom}
	cache := NewCache(loader.load, zerolog.Nop())

	if _, err := cache.Get(path); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	loader.fail = nil
	ds, err := cache.Get(path)
	if err != nil {
		t.Fatalf("Get after recovery: %v", err)
	}
	if len(ds.Records) == 0 {
		t.Error("expected records after recovery")
	}
	if loader.calls != 2 {
		t.Errorf("loader calls = %d, want 2", loader.calls)
	}
}

func TestCacheMissingFile(t *testing.T) {
	cache := NewFileCache(LoadOptions{}, zerolog.Nop())

	_, err := cache.Get("does-not-exist.csv")
	var dle *DataLoadError
	if !errors.As(err, &dle) {
		t.Fatalf("err = %v, want *DataLoadError", err)
	}
}
