package grading

import (
	"github.com/okian/upg/internal/domain/model"
	"github.com/okian/upg/internal/domain/numeric"
	"github.com/okian/upg/internal/domain/types"
)

// Report computes the full view of one subject.
func Report(s model.Subject) types.SubjectReport {
	total := TotalWeight(s)
	percent, grade := SubjectGrade(s)
	out := types.SubjectReport{
		ID:          s.ID,
		Name:        s.Name,
		Percent:     percent,
		Grade:       grade,
		TotalWeight: total,
		Components:  make([]types.ComponentReport, 0, len(s.Components)),
	}
	for _, c := range s.Components {
		scoreSum, maxSum := Totals(c.Entries)
		var norm float64
		if total > 0 {
			norm = numeric.Finite(c.Weight) / total
		}
		out.Components = append(out.Components, types.ComponentReport{
			ID:               c.ID,
			Name:             c.Name,
			Weight:           c.Weight,
			NormalizedWeight: norm,
			ScoreSum:         scoreSum,
			MaxSum:           maxSum,
			Percent:          ComponentPercent(c),
			Entries:          len(c.Entries),
		})
	}
	return out
}

// Overview wraps OverallAverage into the presentation view.
func Overview(subjects []model.Subject) types.Overview {
	sum := OverallAverage(subjects)
	out := types.Overview{
		Count:    sum.Count,
		Honors:   string(sum.Honors),
		Subjects: make([]types.SubjectGrade, 0, len(sum.Included)),
	}
	for _, g := range sum.Included {
		out.Subjects = append(out.Subjects, line(g))
	}
	if sum.Count > 0 {
		avg := sum.Average
		lo, hi := line(sum.Lowest), line(sum.Highest)
		out.Average, out.Lowest, out.Highest = &avg, &lo, &hi
	}
	return out
}

func line(g Graded) types.SubjectGrade {
	return types.SubjectGrade{ID: g.SubjectID, Name: g.Name, Percent: g.Percent, Grade: g.Grade}
}
