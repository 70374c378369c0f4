package welcome

// Submission carries the two form fields exactly as posted. A nil field was
// absent from the request; no validation is applied to either.
type Submission struct {
	Name  *string `form:"name"`
	Email *string `form:"email"`
}

func NewSubmission(name, email string) *Submission {
	return &Submission{Name: &name, Email: &email}
}

func (s *Submission) HasName() bool {
	return s != nil && s.Name != nil
}

func (s *Submission) HasEmail() bool {
	return s != nil && s.Email != nil
}

func valueOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
