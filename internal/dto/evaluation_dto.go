package dto

// PageEvaluation is the correctness judgment for one subject on one page.
// Target and Color hold "-" for a skipped page, or comma separated names
// when several fills missed the expected area.
type PageEvaluation struct {
	Page    string `json:"page"`
	Target  string `json:"target"`
	Color   string `json:"color"`
	Correct int    `json:"correct"`
}

// SubjectSummary aggregates the evaluations of one subject's submission.
type SubjectSummary struct {
	SurveyName        string           `json:"survey_name"`
	SubjectName       string           `json:"subject_name"`
	SubjectDOB        string           `json:"subject_dob"`
	Evaluations       []PageEvaluation `json:"evaluations"`
	TotalPages        int              `json:"total_pages"`
	TotalCorrect      int              `json:"total_correct"`
	PercentageCorrect int              `json:"percentage_correct"`
}

// SubmissionResponse is returned after a single subject was stored.
type SubmissionResponse struct {
	SubjectID uint           `json:"subject_id"`
	Summary   SubjectSummary `json:"summary"`
}

// Outcome statuses reported per subject in a batch.
const (
	OutcomeStored = "stored"
	OutcomeFailed = "failed"
)

// SubjectOutcomeResponse reports what happened to one subject of a batch.
type SubjectOutcomeResponse struct {
	Index     int             `json:"index"`
	Subject   string          `json:"subject"`
	Status    string          `json:"status"`
	SubjectID uint            `json:"subject_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	Summary   *SubjectSummary `json:"summary,omitempty"`
}

// BatchSubmissionResponse lists per subject outcomes in submitted order.
type BatchSubmissionResponse struct {
	Survey   string                   `json:"survey"`
	Stored   int                      `json:"stored"`
	Failed   int                      `json:"failed"`
	Outcomes []SubjectOutcomeResponse `json:"outcomes"`
}
