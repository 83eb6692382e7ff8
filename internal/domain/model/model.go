// Package model contains the grade calculator's data model.
//
// Every entity is a plain record that serializes as-is; there is no hidden
// state. A Subject exclusively owns its components and conversion table and
// a Component exclusively owns its entries.
package model

import "github.com/google/uuid"

// Theme is the presentation theme stored with the document.
type Theme string

// View is the presentation view stored with the document.
type View string

// Supported themes and views.
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	ViewSubjects View = "subjects"
	ViewAbout    View = "about"
)

// Default labels for newly created entities.
const (
	DefaultSubjectName   = "New Subject"
	DefaultComponentName = "New Component"
	DefaultEntryLabel    = "New Task"

	// WorstGrade is the grade assigned when no threshold matches.
	WorstGrade = 5.0
	// BestGrade is the lowest (best) grade a threshold may carry.
	BestGrade = 1.0
)

// Entry is one scored task inside a component.
type Entry struct {
	ID    string  `json:"id" yaml:"id"`
	Label string  `json:"label" yaml:"label"`
	Score float64 `json:"score" yaml:"score"`
	Max   float64 `json:"max" yaml:"max"`
}

// Component is a weighted grading category within a subject.
// Weights are relative and normalized against the subject total at use.
type Component struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Weight  float64 `json:"weight" yaml:"weight"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Threshold is one step of the percent-to-grade function.
type Threshold struct {
	ID          string  `json:"id" yaml:"id"`
	PercentFrom float64 `json:"percentFrom" yaml:"percentFrom"`
	Grade       float64 `json:"grade" yaml:"grade"`
}

// Subject is a course tracked with its own components and conversion table.
type Subject struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Components []Component `json:"components" yaml:"components"`
	Conversion []Threshold `json:"conversion" yaml:"conversion"`
}

// State is the whole document: every subject plus presentation settings.
// An empty SelectedSubjectID means no subject is selected.
type State struct {
	Subjects          []Subject `json:"subjects" yaml:"subjects"`
	SelectedSubjectID string    `json:"selectedSubjectId" yaml:"selectedSubjectId"`
	Theme             Theme     `json:"theme" yaml:"theme"`
	View              View      `json:"view" yaml:"view"`
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	return v == ViewSubjects || v == ViewAbout
}

// defaultTable is the percentFrom -> grade layout of the default conversion.
var defaultTable = [...]struct{ from, grade float64 }{
	{95, 1.0},
	{90, 1.25},
	{85, 1.5},
	{80, 1.75},
	{75, 2.0},
	{70, 2.25},
	{65, 2.5},
	{60, 2.75},
	{55, 3.0},
	{50, 3.5},
	{45, 4.0},
	{0, 5.0},
}

// DefaultConversion returns the 12-row default table with fresh ids.
func DefaultConversion() []Threshold {
	out := make([]Threshold, len(defaultTable))
	for i, row := range defaultTable {
		out[i] = Threshold{ID: NewID(), PercentFrom: row.from, Grade: row.grade}
	}
	return out
}

// NewSubject builds an empty subject carrying the default conversion.
func NewSubject(name string) Subject {
	if name == "" {
		name = DefaultSubjectName
	}
	return Subject{
		ID:         NewID(),
		Name:       name,
		Components: []Component{},
		Conversion: DefaultConversion(),
	}
}

// Seed returns the document used on first start and after a reset.
func Seed() *State {
	subj := Subject{
		ID:   NewID(),
		Name: "Sample Subject",
		Components: []Component{
			{ID: NewID(), Name: "Quizzes", Weight: 30, Entries: []Entry{}},
			{ID: NewID(), Name: "Assignments", Weight: 40, Entries: []Entry{}},
			{ID: NewID(), Name: "Final Exam", Weight: 30, Entries: []Entry{}},
		},
		Conversion: DefaultConversion(),
	}
	return &State{
		Subjects:          []Subject{subj},
		SelectedSubjectID: subj.ID,
		Theme:             ThemeDark,
		View:              ViewSubjects,
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Subjects = make([]Subject, len(s.Subjects))
	for i := range s.Subjects {
		out.Subjects[i] = s.Subjects[i].Clone()
	}
	return &out
}

// Clone returns a deep copy of the subject.
func (s Subject) Clone() Subject {
	out := s
	out.Components = make([]Component, len(s.Components))
	for i, c := range s.Components {
		c.Entries = append([]Entry(nil), c.Entries...)
		if c.Entries == nil {
			c.Entries = []Entry{}
		}
		out.Components[i] = c
	}
	out.Conversion = append([]Threshold{}, s.Conversion...)
	return out
}
