// Package chart turns summary tables into chart specifications and draws them.
package chart

import (
	"errors"
	"fmt"

	"github.com/stemsi/exstem-report/internal/model"
)

// ErrUnknownPanel is returned for a panel id other than exam, class or overall.
var ErrUnknownPanel = errors.New("unknown panel")

// Kind is the shape of a chart.
type Kind string

const (
	KindBar Kind = "bar"
	KindPie Kind = "pie"
)

// PanelID names one of the three dashboard panels.
type PanelID string

const (
	PanelExam    PanelID = "exam"
	PanelClass   PanelID = "class"
	PanelOverall PanelID = "overall"
)

// PanelIDs lists the panels in display order.
var PanelIDs = []PanelID{PanelExam, PanelClass, PanelOverall}

// ParsePanelID validates a panel id taken from a request.
func ParsePanelID(s string) (PanelID, error) {
	for _, id := range PanelIDs {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPanel, s)
}

// Point is one category of a chart.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Spec describes a chart independently of how it is drawn.
type Spec struct {
	Kind   Kind    `json:"kind"`
	XField string  `json:"x_field"`
	YField string  `json:"y_field"`
	Title  string  `json:"title"`
	Data   []Point `json:"data"`
}

// Panel is one dashboard section: a chart, or a notice when there is no data.
type Panel struct {
	ID     PanelID `json:"id"`
	Header string  `json:"header"`
	Spec   *Spec   `json:"chart,omitempty"`
	Notice string  `json:"notice,omitempty"`
}

// HasChart reports whether the panel carries a chart rather than a notice.
func (p Panel) HasChart() bool {
	return p.Spec != nil
}

type panelDef struct {
	header string
	notice string
	kind   Kind
	xField string
	table  func(model.Summaries) model.SummaryTable
	title  func(model.Selection) string
}

var panelDefs = map[PanelID]panelDef{
	PanelExam: {
		header: "Exam-wise Performance",
		notice: "No data available for the selected options.",
		kind:   KindBar,
		xField: model.ColumnExam,
		table:  func(s model.Summaries) model.SummaryTable { return s.Exam },
		title: func(sel model.Selection) string {
			return fmt.Sprintf("Exam-wise Marks for %s (%s)", sel.Student, sel.Subject)
		},
	},
	PanelClass: {
		header: "Class-wise Comparison",
		notice: "No data available for class comparison.",
		kind:   KindBar,
		xField: model.ColumnClass,
		table:  func(s model.Summaries) model.SummaryTable { return s.Class },
		title: func(sel model.Selection) string {
			return fmt.Sprintf("Class-wise Average Marks for %s (%s)", sel.Student, sel.Subject)
		},
	},
	PanelOverall: {
		header: "Overall Class Performance (All Subjects)",
		notice: "No data available for overall class performance.",
		kind:   KindPie,
		xField: model.ColumnClass,
		table:  func(s model.Summaries) model.SummaryTable { return s.Overall },
		title: func(sel model.Selection) string {
			return fmt.Sprintf("Overall Class Performance for %s", sel.Student)
		},
	},
}

// BuildPanel renders one summary of sums into a panel for sel.
func BuildPanel(id PanelID, sums model.Summaries, sel model.Selection) (Panel, error) {
	def, ok := panelDefs[id]
	if !ok {
		return Panel{}, fmt.Errorf("%w: %q", ErrUnknownPanel, id)
	}
	sel = sel.Normalize()

	panel := Panel{ID: id, Header: def.header}
	table := def.table(sums)
	if table.Empty() {
		panel.Notice = def.notice
		return panel, nil
	}

	data := make([]Point, 0, len(table.Rows))
	for _, row := range table.Rows {
		data = append(data, Point{Label: row.Key, Value: row.Mean})
	}
	panel.Spec = &Spec{
		Kind:   def.kind,
		XField: def.xField,
		YField: model.ColumnMarks,
		Title:  def.title(sel),
		Data:   data,
	}
	return panel, nil
}

// BuildPanels renders all three panels in display order.
func BuildPanels(sums model.Summaries, sel model.Selection) []Panel {
	panels := make([]Panel, 0, len(PanelIDs))
	for _, id := range PanelIDs {
		p, _ := BuildPanel(id, sums, sel)
		panels = append(panels, p)
	}
	return panels
}
