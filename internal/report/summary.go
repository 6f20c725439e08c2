// Package report filters a dataset by a selection and averages marks per group.
// Every function here is pure: the dataset is never modified.
package report

import (
	"github.com/stemsi/exstem-report/internal/model"
	"gonum.org/v1/gonum/stat"
)

// Predicate reports whether a record belongs to a scope.
type Predicate func(r model.StudentRecord) bool

// KeyFunc extracts the grouping key of a record.
type KeyFunc func(r model.StudentRecord) string

// ByStudent keeps records of one student.
func ByStudent(name string) Predicate {
	return func(r model.StudentRecord) bool { return r.Name == name }
}

// BySubject keeps records of one subject. AllSubjects keeps everything.
func BySubject(subject string) Predicate {
	if subject == model.AllSubjects {
		return func(model.StudentRecord) bool { return true }
	}
	return func(r model.StudentRecord) bool { return r.Subject == subject }
}

// ByClass keeps records of one class.
func ByClass(class string) Predicate {
	return func(r model.StudentRecord) bool { return r.Class == class }
}

// ExamKey groups by exam.
func ExamKey(r model.StudentRecord) string { return r.Exam }

// ClassKey groups by class.
func ClassKey(r model.StudentRecord) string { return r.Class }

// Filter returns the records matching every predicate, in dataset order.
func Filter(records []model.StudentRecord, preds ...Predicate) []model.StudentRecord {
	out := make([]model.StudentRecord, 0)
	for _, r := range records {
		if matchAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

func matchAll(r model.StudentRecord, preds []Predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// GroupMean groups records by key and averages their marks. Groups appear in
// first-seen order; absent groups are not reported.
func GroupMean(records []model.StudentRecord, groupBy string, key KeyFunc) model.SummaryTable {
	table := model.SummaryTable{GroupBy: groupBy, Rows: []model.SummaryRow{}}

	var order []string
	marks := make(map[string][]float64)
	for _, r := range records {
		k := key(r)
		if _, seen := marks[k]; !seen {
			order = append(order, k)
		}
		marks[k] = append(marks[k], r.Marks)
	}

	for _, k := range order {
		table.Rows = append(table.Rows, model.SummaryRow{
			Key:   k,
			Mean:  stat.Mean(marks[k], nil),
			Count: len(marks[k]),
		})
	}
	return table
}

// EmptySummaries returns the three summaries with no groups.
func EmptySummaries() model.Summaries {
	return model.Summaries{
		Exam:    model.SummaryTable{GroupBy: model.ColumnExam, Rows: []model.SummaryRow{}},
		Class:   model.SummaryTable{GroupBy: model.ColumnClass, Rows: []model.SummaryRow{}},
		Overall: model.SummaryTable{GroupBy: model.ColumnClass, Rows: []model.SummaryRow{}},
	}
}

// ComputeSummaries derives the exam, class and overall summaries for sel.
//
// The exam summary is restricted to the selected student, subject and class.
// The class summary drops the class restriction. The overall summary only
// restricts by student and covers every subject and class.
//
// A selection whose student or class does not occur in the dataset yields
// empty summaries. An unknown subject simply matches nothing.
func ComputeSummaries(ds *model.Dataset, sel model.Selection) model.Summaries {
	sel = sel.Normalize()
	if ds == nil || !Valid(ds, sel) {
		return EmptySummaries()
	}

	byStudent := Filter(ds.Records, ByStudent(sel.Student))
	byStudentSubject := Filter(byStudent, BySubject(sel.Subject))
	examScope := Filter(byStudentSubject, ByClass(sel.Class))

	return model.Summaries{
		Exam:    GroupMean(examScope, model.ColumnExam, ExamKey),
		Class:   GroupMean(byStudentSubject, model.ColumnClass, ClassKey),
		Overall: GroupMean(byStudent, model.ColumnClass, ClassKey),
	}
}

// Valid reports whether the selected student and class both occur in the dataset.
func Valid(ds *model.Dataset, sel model.Selection) bool {
	var student, class bool
	for _, r := range ds.Records {
		student = student || r.Name == sel.Student
		class = class || r.Class == sel.Class
		if student && class {
			return true
		}
	}
	return false
}
