package model

// Question is a single AI-generated interview question.
type Question struct {
	ID         string `json:"id" validate:"required"`
	Question   string `json:"question" validate:"required"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	// Answer carries a previously submitted answer when a candidate
	// resumes an interview. Empty for unanswered questions.
	Answer string `json:"answer,omitempty"`
}

// QuestionSet is the bootstrap payload for one interview.
type QuestionSet struct {
	JobTitle        string     `json:"job_title" validate:"required"`
	DurationMinutes int        `json:"duration_minutes" validate:"required,min=1"`
	Questions       []Question `json:"questions" validate:"required,min=1,dive"`
}
