package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-report/internal/chart"
	"github.com/stemsi/exstem-report/internal/dataset"
	"github.com/stemsi/exstem-report/internal/response"
	"github.com/stemsi/exstem-report/internal/service"
	"github.com/stemsi/exstem-report/internal/validator"
)

const marksCSV = `Name,Class,Subject,Exam,Marks
Alice,8,Math,Midterm,80
Alice,8,Math,Final,90
Alice,9,Math,Midterm,70
Alice,8,Science,Midterm,absent
Bob,8,Math,Midterm,50
`

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	os.Exit(m.Run())
}

func newTestService(t *testing.T, content string) (*service.ReportService, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marks.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	source := dataset.NewFileCache(dataset.LoadOptions{}, zerolog.Nop())
	return service.NewReportService(source, path, nil, zerolog.Nop()), path
}

func newTestEngine(t *testing.T, content string) (*gin.Engine, string) {
	t.Helper()
	svc, path := newTestService(t, content)
	h := NewReportHandler(svc, chart.NewRenderer(320, 240), zerolog.Nop())

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.GET("/options", h.GetOptions)
	r.GET("/summaries", h.GetSummaries)
	r.GET("/charts/:panel", h.GetChart)
	r.GET("/dataset", h.GetDataset)
	r.POST("/dataset/reload", h.ReloadDataset)
	return r, path
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    response.ErrCode  `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Metadata struct {
		RequestID string `json:"request_id"`
	} `json:"metadata"`
}

func doRequest(t *testing.T, r http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func TestGetOptions(t *testing.T) {
	r, _ := newTestEngine(t, marksCSV)
	w, env := doRequest(t, r, http.MethodGet, "/options")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var data struct {
		Options struct {
			Students []string `json:"students"`
			Classes  []string `json:"classes"`
			Subjects []string `json:"subjects"`
		} `json:"options"`
		DefaultSelection struct {
			Student string `json:"student"`
			Subject string `json:"subject"`
		} `json:"default_selection"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Options.Students) != 2 || data.Options.Subjects[0] != "All Subjects" {
		t.Errorf("options = %+v", data.Options)
	}
	if data.DefaultSelection.Student != "Alice" || data.DefaultSelection.Subject != "All Subjects" {
		t.Errorf("default selection = %+v", data.DefaultSelection)
	}
	if env.Metadata.RequestID == "" {
		t.Error("missing request id")
	}
}

func TestGetSummaries(t *testing.T) {
	r, _ := newTestEngine(t, marksCSV)
	w, env := doRequest(t, r, http.MethodGet, "/summaries?student=Alice&class=8&subject=Math")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var dash service.Dashboard
	if err := json.Unmarshal(env.Data, &dash); err != nil {
		t.Fatal(err)
	}
	if row, ok := dash.Summaries.Exam.Lookup("Final"); !ok || row.Mean != 90 {
		t.Errorf("exam Final = %+v", row)
	}
	if row, ok := dash.Summaries.Class.Lookup("8"); !ok || row.Mean != 85 {
		t.Errorf("class 8 = %+v", row)
	}
	if len(dash.Panels) != 3 || !dash.Panels[2].HasChart() {
		t.Errorf("panels = %+v", dash.Panels)
	}
}

func TestGetSummariesStaleSelection(t *testing.T) {
	r, _ := newTestEngine(t, marksCSV)
	w, env := doRequest(t, r, http.MethodGet, "/summaries?student=Zed&class=8")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var dash service.Dashboard
	if err := json.Unmarshal(env.Data, &dash); err != nil {
		t.Fatal(err)
	}
	for _, p := range dash.Panels {
		if p.HasChart() || p.Notice == "" {
			t.Errorf("panel %s = %+v, want a notice", p.ID, p)
		}
	}
}

func TestGetSummariesValidation(t *testing.T) {
	r, _ := newTestEngine(t, marksCSV)
	w, env := doRequest(t, r, http.MethodGet, "/summaries?class=8")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env.Error == nil || env.Error.Code != response.ErrValidation {
		t.Fatalf("error = %+v", env.Error)
	}
	if _, ok := env.Error.Fields["student"]; !ok {
		t.Errorf("fields = %v, want a student entry", env.Error.Fields)
	}
}

func TestGetChart(t *testing.T) {
	r, _ := newTestEngine(t, marksCSV)

	w, _ := doRequest(t, r, http.MethodGet, "/charts/exam?student=Alice&class=8&subject=Math")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "\x89PNG") {
		t.Error("body is not a PNG image")
	}

	w, _ = doRequest(t, r, http.MethodGet, "/charts/overall?student=Alice&class=8&format=svg")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
}

func TestGetChartZeroMarksPie(t *testing.T) {
	r, _ := newTestEngine(t, "Name,Class,Subject,Exam,Marks\nCara,8,Math,Final,0\nCara,9,Math,Final,0\n")

	w, _ := doRequest(t, r, http.MethodGet, "/charts/overall?student=Cara&class=8")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(w.Body.String(), "\x89PNG") {
		t.Error("body is not a PNG image")
	}
}

func TestGetChartErrors(t *testing.T) {
	r, _ := newTestEngine(t, marksCSV)

	tests := []struct {
		name   string
		target string
		status int
		code   response.ErrCode
		msg    string
	}{
		{"unknown panel", "/charts/radar?student=Alice&class=8", http.StatusNotFound, response.ErrUnknownPanel, ""},
		{"bad format", "/charts/exam?student=Alice&class=8&format=gif", http.StatusBadRequest, response.ErrValidation, ""},
		{"missing class", "/charts/exam?student=Alice", http.StatusBadRequest, response.ErrValidation, ""},
		{"no data", "/charts/class?student=Bob&class=8&subject=Science", http.StatusNotFound, response.ErrNoData, "No data available for class comparison."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doRequest(t, r, http.MethodGet, tt.target)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if env.Error == nil || env.Error.Code != tt.code {
				t.Fatalf("error = %+v, want %s", env.Error, tt.code)
			}
			if tt.msg != "" && env.Error.Message != tt.msg {
				t.Errorf("message = %q, want %q", env.Error.Message, tt.msg)
			}
		})
	}
}

func TestGetDatasetAndReload(t *testing.T) {
	r, path := newTestEngine(t, marksCSV)

	w, env := doRequest(t, r, http.MethodGet, "/dataset")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var data struct {
		Dataset struct {
			Records int `json:"records"`
			Dropped int `json:"dropped"`
		} `json:"dataset"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Dataset.Records != 4 || data.Dataset.Dropped != 1 {
		t.Errorf("dataset = %+v, want 4 records and 1 dropped", data.Dataset)
	}

	if err := os.WriteFile(path, []byte("Name,Class\nAlice,8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, env = doRequest(t, r, http.MethodPost, "/dataset/reload")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if env.Error == nil || env.Error.Code != response.ErrDataLoad {
		t.Fatalf("error = %+v, want DATA_LOAD_ERROR", env.Error)
	}

	// The failure is not remembered: fixing the file is enough.
	if err := os.WriteFile(path, []byte(marksCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	w, _ = doRequest(t, r, http.MethodPost, "/dataset/reload")
	if w.Code != http.StatusOK {
		t.Fatalf("status after fix = %d", w.Code)
	}
}

func TestMissingSourceIsDataLoadError(t *testing.T) {
	r, path := newTestEngine(t, marksCSV)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	w, env := doRequest(t, r, http.MethodPost, "/dataset/reload")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != response.ErrDataLoad {
		t.Errorf("error = %+v, want DATA_LOAD_ERROR", env.Error)
	}
}
