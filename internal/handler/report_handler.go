package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-report/internal/chart"
	"github.com/stemsi/exstem-report/internal/dataset"
	"github.com/stemsi/exstem-report/internal/model"
	"github.com/stemsi/exstem-report/internal/report"
	"github.com/stemsi/exstem-report/internal/response"
	"github.com/stemsi/exstem-report/internal/service"
	"github.com/stemsi/exstem-report/internal/validator"
)

// ReportHandler serves selection options, summaries and chart images.
type ReportHandler struct {
	reportService *service.ReportService
	renderer      *chart.Renderer
	log           zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService, renderer *chart.Renderer, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		renderer:      renderer,
		log:           log.With().Str("component", "report_handler").Logger(),
	}
}

// GetOptions godoc
// GET /api/v1/options
// Returns the students, classes and subjects offered by the selection controls.
func (h *ReportHandler) GetOptions(c *gin.Context) {
	opts, err := h.reportService.Options(c.Request.Context())
	if err != nil {
		h.failLoad(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"options":           opts,
		"default_selection": report.DefaultSelection(opts),
	})
}

// GetSummaries godoc
// GET /api/v1/summaries?student=&class=&subject=
// Returns the exam, class and overall summaries with their chart panels.
func (h *ReportHandler) GetSummaries(c *gin.Context) {
	var sel model.Selection
	if fields := validator.BindQuery(c, &sel); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	dash, err := h.reportService.Dashboard(c.Request.Context(), sel)
	if err != nil {
		h.failLoad(c, err)
		return
	}

	response.Success(c, http.StatusOK, dash)
}

// ChartQuery is the query of a chart image request.
type ChartQuery struct {
	model.Selection
	Format string `form:"format" binding:"omitempty,oneof=png svg"`
}

// GetChart godoc
// GET /api/v1/charts/:panel?student=&class=&subject=&format=png|svg
// Draws one panel as an image, or returns NO_DATA with the panel notice.
func (h *ReportHandler) GetChart(c *gin.Context) {
	id, err := chart.ParsePanelID(c.Param("panel"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrUnknownPanel)
		return
	}

	var q ChartQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	format, err := chart.ParseFormat(q.Format)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedChart)
		return
	}

	panel, err := h.reportService.Panel(c.Request.Context(), id, q.Selection)
	if err != nil {
		h.failLoad(c, err)
		return
	}
	if !panel.HasChart() {
		response.FailWithMessage(c, http.StatusNotFound, response.ErrNoData, panel.Notice)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(panel.Spec, format, &buf); err != nil {
		h.log.Error().Err(err).Str("panel", string(id)).Msg("Chart render failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// GetDataset godoc
// GET /api/v1/dataset
// Describes the loaded dataset.
func (h *ReportHandler) GetDataset(c *gin.Context) {
	stats, err := h.reportService.Stats(c.Request.Context())
	if err != nil {
		h.failLoad(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dataset": stats})
}

// ReloadDataset godoc
// POST /api/v1/dataset/reload
// Forces the source file to be read again.
func (h *ReportHandler) ReloadDataset(c *gin.Context) {
	stats, err := h.reportService.Reload(c.Request.Context())
	if err != nil {
		h.failLoad(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dataset": stats})
}

func (h *ReportHandler) failLoad(c *gin.Context, err error) {
	var dle *dataset.DataLoadError
	if errors.As(err, &dle) {
		h.log.Error().Err(err).Msg("Dataset unavailable")
		response.Fail(c, http.StatusInternalServerError, response.ErrDataLoad)
		return
	}
	h.log.Error().Err(err).Msg("Report request failed")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
