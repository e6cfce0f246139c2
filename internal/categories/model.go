package categories

import "errors"

var ErrNotFound = errors.New("not found")

// Category groups competing quotes for one scope of work within a project.
type Category struct {
	ID              string `json:"id"`
	ProjectID       string `json:"projectId"`
	ProjectName     string `json:"projectName,omitempty"`
	Name            string `json:"name"`
	SelectedQuoteID string `json:"selectedQuoteId,omitempty"`
}

// Specification is a requirements document quotes are checked against.
type Specification struct {
	ID            string `json:"id"`
	CategoryID    string `json:"categoryId,omitempty"`
	ProjectID     string `json:"projectId,omitempty"`
	Name          string `json:"name"`
	ExtractedText string `json:"-"`
}

type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
