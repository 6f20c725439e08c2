package model

import "time"

// Required column headers of the source table.
const (
	ColumnName    = "Name"
	ColumnClass   = "Class"
	ColumnSubject = "Subject"
	ColumnExam    = "Exam"
	ColumnMarks   = "Marks"
)

// RequiredColumns lists every header a source table must carry.
var RequiredColumns = []string{ColumnName, ColumnClass, ColumnSubject, ColumnExam, ColumnMarks}

// StudentRecord is one cleaned row of the source table.
type StudentRecord struct {
	Name    string  `json:"name"`
	Class   string  `json:"class"`
	Subject string  `json:"subject"`
	Exam    string  `json:"exam"`
	Marks   float64 `json:"marks"`
}

// Dataset is the cleaned, read-only content of one source file.
type Dataset struct {
	Source   string          `json:"source"`
	Version  string          `json:"version"`
	Records  []StudentRecord `json:"-"`
	Dropped  int             `json:"dropped"`
	LoadedAt time.Time       `json:"loaded_at"`
}

// DatasetStats is the public view of a loaded dataset.
type DatasetStats struct {
	Source   string    `json:"source"`
	Version  string    `json:"version"`
	Records  int       `json:"records"`
	Dropped  int       `json:"dropped"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Stats summarizes the dataset without exposing its rows.
func (d *Dataset) Stats() DatasetStats {
	return DatasetStats{
		Source:   d.Source,
		Version:  d.Version,
		Records:  len(d.Records),
		Dropped:  d.Dropped,
		LoadedAt: d.LoadedAt,
	}
}
