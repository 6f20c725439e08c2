package model

// AllSubjects is the subject selection that disables subject filtering.
const AllSubjects = "All Subjects"

// Selection is the current student/class/subject choice of a client.
type Selection struct {
	Student string `json:"student" form:"student" binding:"required,max=200"`
	Class   string `json:"class" form:"class" binding:"required,max=100"`
	Subject string `json:"subject" form:"subject" binding:"max=200"`
}

// Normalize fills an empty subject with AllSubjects.
func (s Selection) Normalize() Selection {
	if s.Subject == "" {
		s.Subject = AllSubjects
	}
	return s
}

// Options holds the choices offered for each selection control.
type Options struct {
	Students []string `json:"students"`
	Classes  []string `json:"classes"`
	Subjects []string `json:"subjects"`
}
