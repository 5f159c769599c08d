package model

// SubmitAnswerRequest is the payload for persisting one answer.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
}

// CompletionResult is returned by the interview completion endpoint.
// The backend attaches more fields (per-question scoring, transcripts);
// the client only consumes the headline values.
type CompletionResult struct {
	AIScore        float64 `json:"ai_score"`
	Recommendation string  `json:"recommendation"`
}

// VerifyAccessRequest is the payload for the pre-interview login step.
type VerifyAccessRequest struct {
	Email      string `json:"email" validate:"required,email"`
	AccessCode string `json:"access_code" validate:"required,len=6"`
}
