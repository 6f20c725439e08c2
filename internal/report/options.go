package report

import "github.com/stemsi/exstem-report/internal/model"

// BuildOptions lists the distinct students, classes and subjects of ds in
// first-seen order. Subjects start with the AllSubjects sentinel.
func BuildOptions(ds *model.Dataset) model.Options {
	opts := model.Options{
		Students: []string{},
		Classes:  []string{},
		Subjects: []string{model.AllSubjects},
	}
	if ds == nil {
		return opts
	}

	opts.Students = distinct(ds.Records, func(r model.StudentRecord) string { return r.Name })
	opts.Classes = distinct(ds.Records, ClassKey)
	opts.Subjects = append(opts.Subjects, distinct(ds.Records, func(r model.StudentRecord) string { return r.Subject })...)
	return opts
}

// DefaultSelection picks the first student, the first class and all subjects.
func DefaultSelection(opts model.Options) model.Selection {
	sel := model.Selection{Subject: model.AllSubjects}
	if len(opts.Students) > 0 {
		sel.Student = opts.Students[0]
	}
	if len(opts.Classes) > 0 {
		sel.Class = opts.Classes[0]
	}
	return sel
}

func distinct(records []model.StudentRecord, key KeyFunc) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
