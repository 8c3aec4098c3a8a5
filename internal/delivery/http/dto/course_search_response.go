package dto

import "github.com/google/uuid"

type CourseSearchResponse struct {
	CourseID        uuid.UUID `json:"course_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	DifficultyLevel string    `json:"difficulty_level"`
	Language        string    `json:"language"`
	Subject         string    `json:"subject"`
	Provider        string    `json:"provider"`
}
