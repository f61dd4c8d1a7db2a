package model

import "time"

// Section is a topical grouping of questions (e.g. traffic rules).
type Section struct {
	ID            string    `json:"section_id"`
	Name          Localized `json:"name"`
	Description   Localized `json:"description"`
	QuestionCount int       `json:"question_count"`
	Color         string    `json:"color"`
	Order         int       `json:"order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SectionStatistics summarizes the active questions of a section.
type SectionStatistics struct {
	SectionID           string             `json:"section_id"`
	SectionName         string             `json:"section_name"`
	TotalQuestions      int                `json:"total_questions"`
	DifficultyBreakdown map[Difficulty]int `json:"difficulty_breakdown"`
}
