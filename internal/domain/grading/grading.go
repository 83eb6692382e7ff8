// Package grading computes weighted percents and grades from the data model.
//
// Every function here is pure: inputs are never mutated and no I/O happens.
package grading

import (
	"math"
	"sort"

	"github.com/okian/upg/internal/domain/model"
	"github.com/okian/upg/internal/domain/numeric"
)

// Honors tier boundaries on the overall average (inclusive).
const (
	summaBound = 1.25
	magnaBound = 1.45
	cumBound   = 1.75
)

// percentScale converts a ratio to a percent.
const percentScale = 100

// Honors is the tier label derived from an overall average.
type Honors string

// Honors tiers, best first.
const (
	HonorsSumma Honors = "summa_cum_laude"
	HonorsMagna Honors = "magna_cum_laude"
	HonorsCum   Honors = "cum_laude"
	HonorsNone  Honors = "none"
)

// Totals sums score and max across entries. Non-finite values count as 0.
func Totals(entries []model.Entry) (scoreSum, maxSum float64) {
	for _, e := range entries {
		scoreSum += numeric.Finite(e.Score)
		maxSum += numeric.Finite(e.Max)
	}
	return scoreSum, maxSum
}

// ComponentPercent returns scoreSum/maxSum*100, or 0 when maxSum is not positive.
func ComponentPercent(c model.Component) float64 {
	scoreSum, maxSum := Totals(c.Entries)
	if maxSum <= 0 {
		return 0
	}
	return scoreSum / maxSum * percentScale
}

// TotalWeight sums the component weights of a subject.
func TotalWeight(s model.Subject) float64 {
	var total float64
	for _, c := range s.Components {
		total += numeric.Finite(c.Weight)
	}
	return total
}

// SubjectPercent is the weighted mean of component percents with weights
// renormalized against their total. It returns 0 when the total weight is
// not positive.
func SubjectPercent(s model.Subject) float64 {
	total := TotalWeight(s)
	if total <= 0 {
		return 0
	}
	var sum float64
	for _, c := range s.Components {
		sum += ComponentPercent(c) * (numeric.Finite(c.Weight) / total)
	}
	return sum
}

// ConvertPercentToGrade returns the grade of the highest threshold whose
// PercentFrom does not exceed percent. Rows sharing a PercentFrom keep their
// table order, so the earlier row wins. With no matching row the result is
// model.WorstGrade.
func ConvertPercentToGrade(thresholds []model.Threshold, percent float64) float64 {
	sorted := make([]model.Threshold, len(thresholds))
	copy(sorted, thresholds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PercentFrom > sorted[j].PercentFrom
	})
	for _, t := range sorted {
		if percent >= t.PercentFrom {
			return t.Grade
		}
	}
	return model.WorstGrade
}

// SubjectGrade is SubjectPercent mapped through the subject's conversion.
func SubjectGrade(s model.Subject) (percent, grade float64) {
	percent = SubjectPercent(s)
	return percent, ConvertPercentToGrade(s.Conversion, percent)
}

// HonorsFor maps an overall average to its tier.
func HonorsFor(avg float64) Honors {
	switch {
	case avg <= summaBound:
		return HonorsSumma
	case avg <= magnaBound:
		return HonorsMagna
	case avg <= cumBound:
		return HonorsCum
	default:
		return HonorsNone
	}
}

// Graded is one subject's contribution to the overall average.
type Graded struct {
	SubjectID string
	Name      string
	Percent   float64
	Grade     float64
}

// Summary is the cross-subject aggregate.
type Summary struct {
	// Count is the number of subjects with a valid grade.
	Count int
	// Average is meaningful only when Count > 0.
	Average float64
	Honors  Honors
	// Lowest holds the numerically smallest (best) grade, Highest the largest.
	Lowest  Graded
	Highest Graded
	// Included lists the graded subjects in document order.
	Included []Graded
}

// OverallAverage grades every subject and averages the valid grades with
// equal weight. Ties for lowest and highest keep the first subject seen.
func OverallAverage(subjects []model.Subject) Summary {
	var out Summary
	var sum float64
	for _, s := range subjects {
		percent, grade := SubjectGrade(s)
		if math.IsNaN(grade) || math.IsInf(grade, 0) {
			continue
		}
		g := Graded{SubjectID: s.ID, Name: s.Name, Percent: percent, Grade: grade}
		if out.Count == 0 {
			out.Lowest, out.Highest = g, g
		} else {
			if g.Grade < out.Lowest.Grade {
				out.Lowest = g
			}
			if g.Grade > out.Highest.Grade {
				out.Highest = g
			}
		}
		out.Included = append(out.Included, g)
		out.Count++
		sum += grade
	}
	if out.Count == 0 {
		out.Honors = HonorsNone
		return out
	}
	out.Average = sum / float64(out.Count)
	out.Honors = HonorsFor(out.Average)
	return out
}
