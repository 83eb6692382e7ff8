package app

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/okian/upg/internal/domain/model"
	"github.com/okian/upg/internal/domain/numeric"
)

// Raw numeric input is coerced with numeric.ParseClamp; these are the ranges.
const (
	maxWeight  = 100
	maxPercent = 100
)

// ComponentPatch lists the component fields to change. Nil means unchanged.
type ComponentPatch struct {
	Name   *string
	Weight *string
}

// EntryPatch lists the entry fields to change. Nil means unchanged.
type EntryPatch struct {
	Label *string
	Score *string
	Max   *string
}

// ThresholdPatch lists the conversion row fields to change. Nil means unchanged.
type ThresholdPatch struct {
	PercentFrom *string
	Grade       *string
}

// SettingsPatch lists the presentation settings to change. Nil means unchanged.
type SettingsPatch struct {
	Theme *string
	View  *string
}

// AddSubject appends a subject and selects it.
func (c *Controller) AddSubject(ctx context.Context, name string) (model.Subject, error) {
	var out model.Subject
	err := c.mutate(ctx, "add_subject", func(s *model.State) error {
		out = s.AddSubject(strings.TrimSpace(name)).Clone()
		return nil
	})
	return out, err
}

// RenameSubject sets a subject's name.
func (c *Controller) RenameSubject(ctx context.Context, id, name string) (model.Subject, error) {
	var out model.Subject
	err := c.mutate(ctx, "rename_subject", func(s *model.State) error {
		subj, err := s.FindSubject(id)
		if err != nil {
			return err
		}
		subj.Name = name
		out = subj.Clone()
		return nil
	})
	return out, err
}

// DeleteSubject removes a subject with everything it owns.
func (c *Controller) DeleteSubject(ctx context.Context, id string) error {
	return c.mutate(ctx, "delete_subject", func(s *model.State) error {
		return s.DeleteSubject(id)
	})
}

// SelectSubject selects a subject and switches to the subjects view.
func (c *Controller) SelectSubject(ctx context.Context, id string) error {
	return c.mutate(ctx, "select_subject", func(s *model.State) error {
		return s.SelectSubject(id)
	})
}

// AddComponent appends a component. An empty weight is 0.
func (c *Controller) AddComponent(ctx context.Context, subjectID, name, weight string) (model.Component, error) {
	var out model.Component
	err := c.mutate(ctx, "add_component", func(s *model.State) error {
		subj, err := s.FindSubject(subjectID)
		if err != nil {
			return err
		}
		comp := subj.AddComponent(strings.TrimSpace(name), numeric.ParseClamp(weight, 0, maxWeight))
		out = cloneComponent(*comp)
		return nil
	})
	return out, err
}

// UpdateComponent renames or reweights a component.
func (c *Controller) UpdateComponent(ctx context.Context, subjectID, componentID string, p ComponentPatch) (model.Component, error) {
	var out model.Component
	err := c.mutate(ctx, "update_component", func(s *model.State) error {
		comp, err := findComponent(s, subjectID, componentID)
		if err != nil {
			return err
		}
		if p.Name != nil {
			comp.Name = *p.Name
		}
		if p.Weight != nil {
			comp.Weight = numeric.ParseClamp(*p.Weight, 0, maxWeight)
		}
		out = cloneComponent(*comp)
		return nil
	})
	return out, err
}

// DeleteComponent removes a component and its entries.
func (c *Controller) DeleteComponent(ctx context.Context, subjectID, componentID string) error {
	return c.mutate(ctx, "delete_component", func(s *model.State) error {
		subj, err := s.FindSubject(subjectID)
		if err != nil {
			return err
		}
		return subj.DeleteComponent(componentID)
	})
}

// AddEntry appends a 0/0 entry to a component.
func (c *Controller) AddEntry(ctx context.Context, subjectID, componentID, label string) (model.Entry, error) {
	var out model.Entry
	err := c.mutate(ctx, "add_entry", func(s *model.State) error {
		comp, err := findComponent(s, subjectID, componentID)
		if err != nil {
			return err
		}
		out = *comp.AddEntry(strings.TrimSpace(label))
		return nil
	})
	return out, err
}

// UpdateEntry changes an entry's label, score or max.
func (c *Controller) UpdateEntry(ctx context.Context, subjectID, componentID, entryID string, p EntryPatch) (model.Entry, error) {
	var out model.Entry
	err := c.mutate(ctx, "update_entry", func(s *model.State) error {
		comp, err := findComponent(s, subjectID, componentID)
		if err != nil {
			return err
		}
		e, err := comp.FindEntry(entryID)
		if err != nil {
			return err
		}
		if p.Label != nil {
			e.Label = *p.Label
		}
		if p.Score != nil {
			e.Score = numeric.ParseClamp(*p.Score, 0, math.Inf(1))
		}
		if p.Max != nil {
			e.Max = numeric.ParseClamp(*p.Max, 0, math.Inf(1))
		}
		out = *e
		return nil
	})
	return out, err
}

// DeleteEntry removes an entry.
func (c *Controller) DeleteEntry(ctx context.Context, subjectID, componentID, entryID string) error {
	return c.mutate(ctx, "delete_entry", func(s *model.State) error {
		comp, err := findComponent(s, subjectID, componentID)
		if err != nil {
			return err
		}
		return comp.DeleteEntry(entryID)
	})
}

// AddThreshold appends a {0% -> 5.0} conversion row.
func (c *Controller) AddThreshold(ctx context.Context, subjectID string) (model.Threshold, error) {
	var out model.Threshold
	err := c.mutate(ctx, "add_threshold", func(s *model.State) error {
		subj, err := s.FindSubject(subjectID)
		if err != nil {
			return err
		}
		out = *subj.AddThreshold()
		return nil
	})
	return out, err
}

// UpdateThreshold changes a conversion row.
func (c *Controller) UpdateThreshold(ctx context.Context, subjectID, thresholdID string, p ThresholdPatch) (model.Threshold, error) {
	var out model.Threshold
	err := c.mutate(ctx, "update_threshold", func(s *model.State) error {
		subj, err := s.FindSubject(subjectID)
		if err != nil {
			return err
		}
		row, err := subj.FindThreshold(thresholdID)
		if err != nil {
			return err
		}
		if p.PercentFrom != nil {
			row.PercentFrom = numeric.ParseClamp(*p.PercentFrom, 0, maxPercent)
		}
		if p.Grade != nil {
			row.Grade = numeric.ParseClamp(*p.Grade, model.BestGrade, model.WorstGrade)
		}
		out = *row
		return nil
	})
	return out, err
}

// DeleteThreshold removes a conversion row; removing the last one reseeds
// the default table.
func (c *Controller) DeleteThreshold(ctx context.Context, subjectID, thresholdID string) error {
	return c.mutate(ctx, "delete_threshold", func(s *model.State) error {
		subj, err := s.FindSubject(subjectID)
		if err != nil {
			return err
		}
		return subj.DeleteThreshold(thresholdID)
	})
}

// UpdateSettings changes theme and view. Both are validated before either is
// applied.
func (c *Controller) UpdateSettings(ctx context.Context, p SettingsPatch) error {
	var theme model.Theme
	var view model.View
	if p.Theme != nil {
		theme = model.Theme(strings.ToLower(strings.TrimSpace(*p.Theme)))
		if !theme.Valid() {
			return fmt.Errorf("update_settings: theme %q: %w", *p.Theme, ErrInvalidInput)
		}
	}
	if p.View != nil {
		view = model.View(strings.ToLower(strings.TrimSpace(*p.View)))
		if !view.Valid() {
			return fmt.Errorf("update_settings: view %q: %w", *p.View, ErrInvalidInput)
		}
	}
	return c.mutate(ctx, "update_settings", func(s *model.State) error {
		if p.Theme != nil {
			s.Theme = theme
		}
		if p.View != nil {
			s.View = view
		}
		return nil
	})
}

// SetTheme switches the presentation theme.
func (c *Controller) SetTheme(ctx context.Context, theme string) error {
	return c.UpdateSettings(ctx, SettingsPatch{Theme: &theme})
}

// SetView switches the presentation view.
func (c *Controller) SetView(ctx context.Context, view string) error {
	return c.UpdateSettings(ctx, SettingsPatch{View: &view})
}

func findComponent(s *model.State, subjectID, componentID string) (*model.Component, error) {
	subj, err := s.FindSubject(subjectID)
	if err != nil {
		return nil, err
	}
	return subj.FindComponent(componentID)
}

func cloneComponent(c model.Component) model.Component {
	c.Entries = append([]model.Entry{}, c.Entries...)
	return c
}
