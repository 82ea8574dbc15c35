package models

// Subject is one entry in the externally maintained subject catalog
type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Topic is one entry in the externally maintained topic catalog
type Topic struct {
	ID          string `json:"id"`
	SubjectID   string `json:"subjectId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Grade       int    `json:"grade"`
}
