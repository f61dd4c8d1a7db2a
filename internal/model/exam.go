package model

// SectionExamQuery is the query string of GET /exams/section.
type SectionExamQuery struct {
	SectionID string `form:"section_id" binding:"required,max=100"`
	Count     *int   `form:"count"      binding:"omitempty,min=1"`
}

// FullExam is a generated full exam as served to a test-taker.
type FullExam struct {
	Questions    []QuestionForTaker `json:"questions"`
	Total        int                `json:"total"`
	Distribution map[string]int     `json:"distribution"`
	Achieved     map[string]int     `json:"achieved"`
}

// SectionExam is a generated single-section exam.
type SectionExam struct {
	Section   *Section           `json:"section"`
	Questions []QuestionForTaker `json:"questions"`
	Total     int                `json:"total"`
}

// QuestionListQuery is the query string of GET /questions.
type QuestionListQuery struct {
	SectionID string `form:"section_id" binding:"omitempty,max=100"`
	Page      int    `form:"page"       binding:"omitempty,min=1"`
	PerPage   int    `form:"per_page"   binding:"omitempty,min=1,max=100"`
}

// AttemptListQuery is the query string of GET /attempts.
type AttemptListQuery struct {
	Page    int `form:"page"     binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1,max=100"`
}
