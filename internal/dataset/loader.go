package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stemsi/exstem-report/internal/model"
	"github.com/xuri/excelize/v2"
)

// ErrEmptySource is returned for a source without a header row.
var ErrEmptySource = errors.New("source has no header row")

// DataLoadError reports a source that cannot be turned into a Dataset.
type DataLoadError struct {
	Source  string
	Missing []string // required columns absent from the header
	Err     error
}

func (e *DataLoadError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("load %s: missing required columns %s", e.Source, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// LoadOptions tunes how a source file is parsed.
type LoadOptions struct {
	// Delimiter overrides the field separator of delimited files.
	// Zero picks tab for .tsv and comma otherwise.
	Delimiter rune
}

// Load reads the table at path, coerces Marks to a number and drops every
// row whose Marks is missing or not numeric.
func Load(path string, opts LoadOptions) (*model.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}

	records, err := readRecords(path, opts)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}

	ds, err := FromRecords(records)
	if err != nil {
		var dle *DataLoadError
		if errors.As(err, &dle) {
			dle.Source = path
			return nil, dle
		}
		return nil, &DataLoadError{Source: path, Err: err}
	}

	ds.Source = path
	ds.Version = Version(path, info)
	return ds, nil
}

// FromRecords builds a Dataset from raw rows, the first of which is the header.
func FromRecords(records [][]string) (*model.Dataset, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, &DataLoadError{Err: ErrEmptySource}
	}

	header := records[0]
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &DataLoadError{Missing: missing}
	}

	ds := &model.Dataset{LoadedAt: time.Now()}
	if len(records) == 1 {
		return ds, nil
	}

	df := dataframe.LoadRecords(normalize(records),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
		dataframe.WithTypes(map[string]series.Type{model.ColumnMarks: series.Float}),
	)
	if df.Err != nil {
		return nil, &DataLoadError{Err: fmt.Errorf("parse table: %w", df.Err)}
	}

	cols := make(map[string]series.Series, len(model.RequiredColumns))
	for _, name := range model.RequiredColumns {
		col := df.Col(name)
		if col.Err != nil {
			return nil, &DataLoadError{Err: fmt.Errorf("column %s: %w", name, col.Err)}
		}
		cols[name] = col
	}

	names := cols[model.ColumnName].Records()
	classes := cols[model.ColumnClass].Records()
	subjects := cols[model.ColumnSubject].Records()
	exams := cols[model.ColumnExam].Records()
	marks := cols[model.ColumnMarks].Float()

	ds.Records = make([]model.StudentRecord, 0, len(marks))
	for i, m := range marks {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			ds.Dropped++
			continue
		}
		ds.Records = append(ds.Records, model.StudentRecord{
			Name:    names[i],
			Class:   classes[i],
			Subject: subjects[i],
			Exam:    exams[i],
			Marks:   m,
		})
	}
	return ds, nil
}

// Version identifies the on-disk revision of the source file at path.
func Version(path string, info os.FileInfo) string {
	h := fnv.New32a()
	h.Write([]byte(path))
	return fmt.Sprintf("%08x-%x-%x", h.Sum32(), info.ModTime().UnixNano(), info.Size())
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[cleanCell(h)] = true
	}
	var missing []string
	for _, col := range model.RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// normalize keeps the first occurrence of each required column, in
// RequiredColumns order, trims every cell and pads short rows.
func normalize(records [][]string) [][]string {
	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		name := cleanCell(h)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	out := make([][]string, 0, len(records))
	out = append(out, append([]string(nil), model.RequiredColumns...))
	for _, row := range records[1:] {
		cells := make([]string, len(model.RequiredColumns))
		for j, col := range model.RequiredColumns {
			if i := index[col]; i < len(row) {
				cells[j] = cleanCell(row[i])
			}
		}
		out = append(out, cells)
	}
	return out
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

func readRecords(path string, opts LoadOptions) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	case ".tsv":
		if opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readDelimited(f, opts.Delimiter)
}

func readDelimited(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited: %w", err)
	}
	return records, nil
}

// readWorkbook reads the first sheet of a spreadsheet.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook does not contain any sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
