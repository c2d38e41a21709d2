package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSubject indicates the personalia failed validation.
	ErrInvalidSubject = errors.New("invalid subject")
	// ErrPageCountMismatch indicates the number of submitted page results
	// differs from the number of pages in the survey.
	ErrPageCountMismatch = errors.New("result count does not match survey pages")
	// ErrSurveyNotFound indicates no survey exists under the requested name.
	ErrSurveyNotFound = errors.New("survey not found")
	// ErrDuplicateSubmission indicates an identical payload was stored recently.
	ErrDuplicateSubmission = errors.New("duplicate submission")
	// ErrInvalidAction indicates an action log entry could not be interpreted.
	ErrInvalidAction = errors.New("invalid action")
)

func invalidSubject(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSubject, message)
}

// ActionError reports which entry of a page's action log could not be
// turned into a record.
type ActionError struct {
	Page  string
	Index int
	Err   error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("page %q action %d: %v", e.Page, e.Index, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
