package model

import "fmt"

// Pointers returned by the Find* and Add* helpers point into the owning
// slice and are only valid until the next structural edit of that slice.

// FindSubject returns the subject with the given id.
func (s *State) FindSubject(id string) (*Subject, error) {
	for i := range s.Subjects {
		if s.Subjects[i].ID == id {
			return &s.Subjects[i], nil
		}
	}
	return nil, fmt.Errorf("subject %q: %w", id, ErrNotFound)
}

// AddSubject appends a new subject and selects it.
func (s *State) AddSubject(name string) *Subject {
	s.Subjects = append(s.Subjects, NewSubject(name))
	subj := &s.Subjects[len(s.Subjects)-1]
	s.SelectedSubjectID = subj.ID
	s.View = ViewSubjects
	return subj
}

// DeleteSubject removes a subject and everything it owns. When the deleted
// subject was selected, the selection moves to the preceding subject, or the
// first one, or is cleared when none remain.
func (s *State) DeleteSubject(id string) error {
	idx := -1
	for i := range s.Subjects {
		if s.Subjects[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("subject %q: %w", id, ErrNotFound)
	}
	s.Subjects = append(s.Subjects[:idx], s.Subjects[idx+1:]...)

	if s.SelectedSubjectID == id {
		s.SelectedSubjectID = ""
		if len(s.Subjects) > 0 {
			s.SelectedSubjectID = s.Subjects[max(0, idx-1)].ID
		}
	}
	return nil
}

// SelectSubject selects a subject and switches to the subjects view.
func (s *State) SelectSubject(id string) error {
	if _, err := s.FindSubject(id); err != nil {
		return err
	}
	s.SelectedSubjectID = id
	s.View = ViewSubjects
	return nil
}

// FindComponent returns the component with the given id.
func (s *Subject) FindComponent(id string) (*Component, error) {
	for i := range s.Components {
		if s.Components[i].ID == id {
			return &s.Components[i], nil
		}
	}
	return nil, fmt.Errorf("component %q: %w", id, ErrNotFound)
}

// AddComponent appends a component with no entries.
func (s *Subject) AddComponent(name string, weight float64) *Component {
	if name == "" {
		name = DefaultComponentName
	}
	s.Components = append(s.Components, Component{
		ID:      NewID(),
		Name:    name,
		Weight:  weight,
		Entries: []Entry{},
	})
	return &s.Components[len(s.Components)-1]
}

// DeleteComponent removes a component and its entries.
func (s *Subject) DeleteComponent(id string) error {
	for i := range s.Components {
		if s.Components[i].ID == id {
			s.Components = append(s.Components[:i], s.Components[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("component %q: %w", id, ErrNotFound)
}

// FindThreshold returns the conversion row with the given id.
func (s *Subject) FindThreshold(id string) (*Threshold, error) {
	for i := range s.Conversion {
		if s.Conversion[i].ID == id {
			return &s.Conversion[i], nil
		}
	}
	return nil, fmt.Errorf("threshold %q: %w", id, ErrNotFound)
}

// AddThreshold appends a {0% -> 5.0} row.
func (s *Subject) AddThreshold() *Threshold {
	s.Conversion = append(s.Conversion, Threshold{
		ID:          NewID(),
		PercentFrom: 0,
		Grade:       WorstGrade,
	})
	return &s.Conversion[len(s.Conversion)-1]
}

// DeleteThreshold removes a conversion row. Removing the last row reseeds
// the default table so the conversion is never empty.
func (s *Subject) DeleteThreshold(id string) error {
	idx := -1
	for i := range s.Conversion {
		if s.Conversion[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("threshold %q: %w", id, ErrNotFound)
	}
	s.Conversion = append(s.Conversion[:idx], s.Conversion[idx+1:]...)
	if len(s.Conversion) == 0 {
		s.Conversion = DefaultConversion()
	}
	return nil
}

// FindEntry returns the entry with the given id.
func (c *Component) FindEntry(id string) (*Entry, error) {
	for i := range c.Entries {
		if c.Entries[i].ID == id {
			return &c.Entries[i], nil
		}
	}
	return nil, fmt.Errorf("entry %q: %w", id, ErrNotFound)
}

// AddEntry appends an empty 0/0 entry.
func (c *Component) AddEntry(label string) *Entry {
	if label == "" {
		label = DefaultEntryLabel
	}
	c.Entries = append(c.Entries, Entry{ID: NewID(), Label: label})
	return &c.Entries[len(c.Entries)-1]
}

// DeleteEntry removes an entry.
func (c *Component) DeleteEntry(id string) error {
	for i := range c.Entries {
		if c.Entries[i].ID == id {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("entry %q: %w", id, ErrNotFound)
}
