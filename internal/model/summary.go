package model

// SummaryRow is the mean of Marks over one group.
type SummaryRow struct {
	Key   string  `json:"key"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// SummaryTable maps each group key of one column to its mean Marks.
type SummaryTable struct {
	GroupBy string       `json:"group_by"`
	Rows    []SummaryRow `json:"rows"`
}

// Empty reports whether the table has no groups.
func (t SummaryTable) Empty() bool {
	return len(t.Rows) == 0
}

// Lookup returns the row for key.
func (t SummaryTable) Lookup(key string) (SummaryRow, bool) {
	for _, r := range t.Rows {
		if r.Key == key {
			return r, true
		}
	}
	return SummaryRow{}, false
}

// Summaries is the output of one pipeline run.
type Summaries struct {
	Exam    SummaryTable `json:"exam_summary"`
	Class   SummaryTable `json:"class_summary"`
	Overall SummaryTable `json:"overall_summary"`
}
