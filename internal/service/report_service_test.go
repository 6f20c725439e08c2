package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-report/internal/chart"
	"github.com/stemsi/exstem-report/internal/model"
)

type fakeSource struct {
	ds          *model.Dataset
	err         error
	gets        int
	invalidated []string
}

func (f *fakeSource) Get(path string) (*model.Dataset, error) {
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	return f.ds, nil
}

func (f *fakeSource) Invalidate(path string) {
	f.invalidated = append(f.invalidated, path)
}

type fakeCache struct {
	entries map[string]model.Summaries
	getErr  error
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]model.Summaries{}}
}

func cacheKey(version string, sel model.Selection) string {
	return version + "|" + sel.Student + "|" + sel.Class + "|" + sel.Subject
}

func (f *fakeCache) GetSummaries(_ context.Context, version string, sel model.Selection) (model.Summaries, bool, error) {
	if f.getErr != nil {
		return model.Summaries{}, false, f.getErr
	}
	s, ok := f.entries[cacheKey(version, sel)]
	return s, ok, nil
}

func (f *fakeCache) SetSummaries(_ context.Context, version string, sel model.Selection, sums model.Summaries) error {
	f.sets++
	f.entries[cacheKey(version, sel)] = sums
	return nil
}

func testDataset() *model.Dataset {
	return &model.Dataset{
		Source:  "marks.csv",
		Version: "v1",
		Records: []model.StudentRecord{
			{Name: "Alice", Class: "8", Subject: "Math", Exam: "Midterm", Marks: 80},
			{Name: "Alice", Class: "8", Subject: "Math", Exam: "Final", Marks: 90},
			{Name: "Alice", Class: "9", Subject: "Math", Exam: "Midterm", Marks: 70},
		},
		Dropped: 2,
	}
}

func TestReportServiceDashboard(t *testing.T) {
	svc := NewReportService(&fakeSource{ds: testDataset()}, "marks.csv", nil, zerolog.Nop())

	dash, err := svc.Dashboard(context.Background(), model.Selection{Student: "Alice", Class: "8"})
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.Selection.Subject != model.AllSubjects {
		t.Errorf("subject = %q, want the sentinel", dash.Selection.Subject)
	}
	if len(dash.Panels) != 3 {
		t.Fatalf("got %d panels, want 3", len(dash.Panels))
	}
	for _, p := range dash.Panels {
		if !p.HasChart() {
			t.Errorf("panel %s shows notice %q", p.ID, p.Notice)
		}
	}
	if row, ok := dash.Summaries.Class.Lookup("8"); !ok || row.Mean != 85 {
		t.Errorf("class 8 = %+v, want mean 85", row)
	}
}

func TestReportServiceSummariesUsesCache(t *testing.T) {
	cache := newFakeCache()
	svc := NewReportService(&fakeSource{ds: testDataset()}, "marks.csv", cache, zerolog.Nop())
	sel := model.Selection{Student: "Alice", Class: "8", Subject: "Math"}

	first, err := svc.Summaries(context.Background(), sel)
	if err != nil {
		t.Fatal(err)
	}
	if cache.sets != 1 {
		t.Fatalf("sets = %d, want 1", cache.sets)
	}

	// A cached entry wins over recomputation.
	marker := model.Summaries{Exam: model.SummaryTable{GroupBy: "marker"}}
	cache.entries[cacheKey("v1", sel)] = marker
	second, err := svc.Summaries(context.Background(), sel)
	if err != nil {
		t.Fatal(err)
	}
	if second.Exam.GroupBy != "marker" {
		t.Errorf("second call recomputed instead of reading the cache")
	}
	if first.Exam.Empty() {
		t.Error("first call should have computed exam rows")
	}
}

func TestReportServiceCacheFailureFallsBack(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	svc := NewReportService(&fakeSource{ds: testDataset()}, "marks.csv", cache, zerolog.Nop())

	sums, err := svc.Summaries(context.Background(), model.Selection{Student: "Alice", Class: "8", Subject: "Math"})
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if sums.Exam.Empty() {
		t.Error("summaries should be computed when the cache fails")
	}
}

func TestReportServiceLoadError(t *testing.T) {
	loadErr := errors.New("boom")
	svc := NewReportService(&fakeSource{err: loadErr}, "marks.csv", nil, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Options(ctx); !errors.Is(err, loadErr) {
		t.Errorf("Options err = %v", err)
	}
	if _, err := svc.Dashboard(ctx, model.Selection{Student: "Alice", Class: "8"}); !errors.Is(err, loadErr) {
		t.Errorf("Dashboard err = %v", err)
	}
	if _, err := svc.Panel(ctx, chart.PanelExam, model.Selection{}); !errors.Is(err, loadErr) {
		t.Errorf("Panel err = %v", err)
	}
}

func TestReportServicePanel(t *testing.T) {
	svc := NewReportService(&fakeSource{ds: testDataset()}, "marks.csv", nil, zerolog.Nop())
	ctx := context.Background()

	p, err := svc.Panel(ctx, chart.PanelOverall, model.Selection{Student: "Alice", Class: "8", Subject: "Art"})
	if err != nil {
		t.Fatal(err)
	}
	if !p.HasChart() || p.Spec.Kind != chart.KindPie {
		t.Errorf("overall panel = %+v, want a pie chart", p)
	}

	p, err = svc.Panel(ctx, chart.PanelExam, model.Selection{Student: "Alice", Class: "8", Subject: "Art"})
	if err != nil {
		t.Fatal(err)
	}
	if p.HasChart() {
		t.Errorf("exam panel for an unknown subject should show a notice")
	}

	if _, err := svc.Panel(ctx, "radar", model.Selection{}); !errors.Is(err, chart.ErrUnknownPanel) {
		t.Errorf("err = %v, want ErrUnknownPanel", err)
	}
}

func TestReportServiceReload(t *testing.T) {
	src := &fakeSource{ds: testDataset()}
	svc := NewReportService(src, "marks.csv", nil, zerolog.Nop())

	stats, err := svc.Reload(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(src.invalidated) != 1 || src.invalidated[0] != "marks.csv" {
		t.Errorf("invalidated = %v", src.invalidated)
	}
	if stats.Records != 3 || stats.Dropped != 2 || stats.Version != "v1" {
		t.Errorf("stats = %+v", stats)
	}
}

func TestReportServiceOptions(t *testing.T) {
	svc := NewReportService(&fakeSource{ds: testDataset()}, "marks.csv", nil, zerolog.Nop())

	opts, err := svc.Options(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Students) != 1 || len(opts.Classes) != 2 || opts.Subjects[0] != model.AllSubjects {
		t.Errorf("options = %+v", opts)
	}
}
