package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-report/internal/chart"
	"github.com/stemsi/exstem-report/internal/model"
	"github.com/stemsi/exstem-report/internal/report"
)

// DatasetSource hands out the current dataset for a path.
type DatasetSource interface {
	Get(path string) (*model.Dataset, error)
	Invalidate(path string)
}

// SummaryCache stores summaries per dataset revision and selection.
type SummaryCache interface {
	GetSummaries(ctx context.Context, version string, sel model.Selection) (model.Summaries, bool, error)
	SetSummaries(ctx context.Context, version string, sel model.Selection, sums model.Summaries) error
}

// Dashboard is everything a client needs to draw the three panels.
type Dashboard struct {
	Selection model.Selection `json:"selection"`
	Summaries model.Summaries `json:"summaries"`
	Panels    []chart.Panel   `json:"panels"`
}

// ReportService serves options, summaries and panels for one data source.
type ReportService struct {
	source DatasetSource
	path   string
	cache  SummaryCache
	log    zerolog.Logger
}

// NewReportService creates a new ReportService. cache may be nil.
func NewReportService(source DatasetSource, path string, cache SummaryCache, log zerolog.Logger) *ReportService {
	return &ReportService{
		source: source,
		path:   path,
		cache:  cache,
		log:    log.With().Str("component", "report_service").Logger(),
	}
}

// Dataset returns the current dataset, loading it if needed.
func (s *ReportService) Dataset(ctx context.Context) (*model.Dataset, error) {
	return s.source.Get(s.path)
}

// Stats describes the current dataset.
func (s *ReportService) Stats(ctx context.Context) (model.DatasetStats, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return model.DatasetStats{}, err
	}
	return ds.Stats(), nil
}

// Options returns the selection choices of the current dataset.
func (s *ReportService) Options(ctx context.Context) (model.Options, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return model.Options{}, err
	}
	return report.BuildOptions(ds), nil
}

// Summaries computes the three summaries for sel.
func (s *ReportService) Summaries(ctx context.Context, sel model.Selection) (model.Summaries, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return model.Summaries{}, err
	}
	sel = sel.Normalize()

	if s.cache != nil {
		sums, ok, err := s.cache.GetSummaries(ctx, ds.Version, sel)
		if err != nil {
			s.log.Warn().Err(err).Msg("Summary cache read failed")
		} else if ok {
			return sums, nil
		}
	}

	sums := report.ComputeSummaries(ds, sel)

	if s.cache != nil {
		if err := s.cache.SetSummaries(ctx, ds.Version, sel, sums); err != nil {
			s.log.Warn().Err(err).Msg("Summary cache write failed")
		}
	}
	return sums, nil
}

// Dashboard computes the summaries for sel and lays them out as panels.
func (s *ReportService) Dashboard(ctx context.Context, sel model.Selection) (*Dashboard, error) {
	sel = sel.Normalize()
	sums, err := s.Summaries(ctx, sel)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Selection: sel,
		Summaries: sums,
		Panels:    chart.BuildPanels(sums, sel),
	}, nil
}

// Panel builds a single panel for sel.
func (s *ReportService) Panel(ctx context.Context, id chart.PanelID, sel model.Selection) (chart.Panel, error) {
	sums, err := s.Summaries(ctx, sel)
	if err != nil {
		return chart.Panel{}, err
	}
	return chart.BuildPanel(id, sums, sel)
}

// Reload drops the memoized dataset and loads the source again.
func (s *ReportService) Reload(ctx context.Context) (model.DatasetStats, error) {
	s.source.Invalidate(s.path)
	stats, err := s.Stats(ctx)
	if err != nil {
		return model.DatasetStats{}, err
	}
	s.log.Info().
		Str("version", stats.Version).
		Int("records", stats.Records).
		Msg("Dataset reloaded")
	return stats, nil
}
