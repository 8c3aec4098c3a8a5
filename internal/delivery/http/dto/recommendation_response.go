package dto

import "github.com/google/uuid"

type RecommendationResponse struct {
	QueryPath string                      `json:"query_path"`
	Courses   []RecommendedCourseResponse `json:"courses"`
}

type RecommendedCourseResponse struct {
	CourseID            uuid.UUID `json:"course_id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	URL                 string    `json:"url"`
	DifficultyLevel     string    `json:"difficulty_level"`
	Language            string    `json:"language"`
	Subject             string    `json:"subject"`
	Provider            string    `json:"provider"`
	AISummary           *string   `json:"ai_summary,omitempty"`
	SkillNames          []string  `json:"skill_names"`
	RecommendationScore float64   `json:"recommendation_score"`
	MatchingSkills      []string  `json:"matching_skills"`
	MaxPriority         int       `json:"max_priority"`
}
