package model

import "time"

type QuestionDifficulty string

const (
	DifficultyEasy   QuestionDifficulty = "Easy"
	DifficultyMedium QuestionDifficulty = "Medium"
	DifficultyHard   QuestionDifficulty = "Hard"
)

type Question struct {
	ID               string             `json:"id"`
	ContestID        string             `json:"contest_id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Difficulty       QuestionDifficulty `json:"difficulty"`
	Points           int                `json:"points"`
	TimeLimitSeconds int                `json:"time_limit_seconds"`
	OrderIndex       int                `json:"order_index"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	SampleCases []TestCase `json:"sample_cases,omitempty"` // hidden cases never serialized
}

type TestCase struct {
	ID             string    `json:"id"`
	QuestionID     string    `json:"question_id"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output"`
	IsHidden       bool      `json:"is_hidden"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}
