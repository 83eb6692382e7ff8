// Package types contains the read-side views handed to the presentation layer.
package types

// ComponentReport is the computed breakdown of one component.
type ComponentReport struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Weight           float64 `json:"weight"`
	NormalizedWeight float64 `json:"normalizedWeight"`
	ScoreSum         float64 `json:"scoreSum"`
	MaxSum           float64 `json:"maxSum"`
	Percent          float64 `json:"percent"`
	Entries          int     `json:"entries"`
}

// SubjectReport is the computed view of one subject.
type SubjectReport struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Percent     float64           `json:"percent"`
	Grade       float64           `json:"grade"`
	TotalWeight float64           `json:"totalWeight"`
	Components  []ComponentReport `json:"components"`
}

// SubjectGrade is one line of the overview.
type SubjectGrade struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Grade   float64 `json:"grade"`
}

// Overview is the cross-subject aggregate. Average, Lowest and Highest are
// omitted when no subject has a valid grade.
type Overview struct {
	Count    int            `json:"count"`
	Average  *float64       `json:"average,omitempty"`
	Honors   string         `json:"honors"`
	Lowest   *SubjectGrade  `json:"lowest,omitempty"`
	Highest  *SubjectGrade  `json:"highest,omitempty"`
	Subjects []SubjectGrade `json:"subjects"`
}
