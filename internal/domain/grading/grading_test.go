package grading_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/okian/upg/internal/domain/grading"
	"github.com/okian/upg/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func comp(name string, weight, score, max float64) model.Component {
	return model.Component{
		ID:      name,
		Name:    name,
		Weight:  weight,
		Entries: []model.Entry{{ID: name + "-e", Label: "t", Score: score, Max: max}},
	}
}

func TestTotals(t *testing.T) {
	Convey("Given a sequence of entries", t, func() {
		entries := []model.Entry{
			{Score: 8, Max: 10},
			{Score: 4.5, Max: 5},
			{Score: math.NaN(), Max: math.Inf(1)},
		}

		Convey("Then scores and maxes are summed with non-finite values as 0", func() {
			scoreSum, maxSum := grading.Totals(entries)
			So(scoreSum, ShouldAlmostEqual, 12.5)
			So(maxSum, ShouldAlmostEqual, 15)
		})

		Convey("And an empty sequence totals to zero", func() {
			scoreSum, maxSum := grading.Totals(nil)
			So(scoreSum, ShouldEqual, 0)
			So(maxSum, ShouldEqual, 0)
		})
	})
}

func TestComponentPercent(t *testing.T) {
	Convey("Given components with entries", t, func() {
		Convey("When max totals to zero", func() {
			c := model.Component{Entries: []model.Entry{{Score: 7, Max: 0}, {Score: 3, Max: 0}}}

			Convey("Then the percent is 0", func() {
				So(grading.ComponentPercent(c), ShouldEqual, 0)
			})
		})

		Convey("When entries carry scores", func() {
			c := model.Component{Entries: []model.Entry{{Score: 15, Max: 20}, {Score: 5, Max: 5}}}

			Convey("Then the percent is scoreSum/maxSum*100", func() {
				So(grading.ComponentPercent(c), ShouldAlmostEqual, 80)
			})
		})

		Convey("For any random entries with zero max", func() {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 200; i++ {
				var entries []model.Entry
				for j := 0; j < rng.Intn(6); j++ {
					entries = append(entries, model.Entry{Score: rng.Float64() * 100})
				}
				So(grading.ComponentPercent(model.Component{Entries: entries}), ShouldEqual, 0)
			}
		})
	})
}

func TestSubjectPercent(t *testing.T) {
	Convey("Given a subject with Quizzes 30% at 80 and Finals 70% at 90", t, func() {
		s := model.Subject{Components: []model.Component{
			comp("Quizzes", 30, 8, 10),
			comp("Finals", 70, 9, 10),
		}}

		Convey("Then the subject percent is 87", func() {
			So(grading.SubjectPercent(s), ShouldAlmostEqual, 87.0, 1e-9)
		})
	})

	Convey("Given weights that do not sum to 100", t, func() {
		s := model.Subject{Components: []model.Component{
			comp("A", 1, 50, 100),
			comp("B", 3, 100, 100),
		}}

		Convey("Then weights are normalized against their total", func() {
			So(grading.SubjectPercent(s), ShouldAlmostEqual, 87.5, 1e-9)
		})
	})

	Convey("Given no components or only zero weights", t, func() {
		So(grading.SubjectPercent(model.Subject{}), ShouldEqual, 0)
		s := model.Subject{Components: []model.Component{comp("A", 0, 10, 10), comp("B", 0, 5, 10)}}
		So(grading.SubjectPercent(s), ShouldEqual, 0)
	})

	Convey("Given random subjects with positive total weight", t, func() {
		rng := rand.New(rand.NewSource(42))

		Convey("Then the percent stays within [0, 100] and is scale invariant", func() {
			for i := 0; i < 500; i++ {
				n := 1 + rng.Intn(6)
				s := model.Subject{}
				scaled := model.Subject{}
				factor := 0.01 + rng.Float64()*50
				for j := 0; j < n; j++ {
					max := float64(rng.Intn(50))
					score := rng.Float64() * max
					w := rng.Float64() * 100
					if j == 0 {
						w += 0.5
					}
					s.Components = append(s.Components, comp("c", w, score, max))
					scaled.Components = append(scaled.Components, comp("c", w*factor, score, max))
				}

				p := grading.SubjectPercent(s)
				So(p, ShouldBeGreaterThanOrEqualTo, 0)
				So(p, ShouldBeLessThanOrEqualTo, 100+1e-9)
				So(grading.SubjectPercent(scaled), ShouldAlmostEqual, p, 1e-9)
			}
		})
	})
}

func TestConvertPercentToGrade(t *testing.T) {
	Convey("Given a single threshold row 75 -> 2.0", t, func() {
		table := []model.Threshold{{ID: "a", PercentFrom: 75, Grade: 2.0}}

		Convey("Then 80 converts to 2.0", func() {
			So(grading.ConvertPercentToGrade(table, 80), ShouldEqual, 2.0)
		})

		Convey("And 75 clears the boundary", func() {
			So(grading.ConvertPercentToGrade(table, 75), ShouldEqual, 2.0)
		})

		Convey("And 50 falls back to the worst grade", func() {
			So(grading.ConvertPercentToGrade(table, 50), ShouldEqual, model.WorstGrade)
		})
	})

	Convey("Given an empty table", t, func() {
		So(grading.ConvertPercentToGrade(nil, 99), ShouldEqual, 5.0)
	})

	Convey("Given the default table in scrambled order", t, func() {
		table := model.DefaultConversion()
		rand.New(rand.NewSource(3)).Shuffle(len(table), func(i, j int) { table[i], table[j] = table[j], table[i] })
		before := append([]model.Threshold(nil), table...)

		Convey("Then the highest cleared threshold wins", func() {
			So(grading.ConvertPercentToGrade(table, 100), ShouldEqual, 1.0)
			So(grading.ConvertPercentToGrade(table, 94.99), ShouldEqual, 1.25)
			So(grading.ConvertPercentToGrade(table, 87), ShouldEqual, 1.5)
			So(grading.ConvertPercentToGrade(table, 50), ShouldEqual, 3.5)
			So(grading.ConvertPercentToGrade(table, 44.9), ShouldEqual, 5.0)
			So(grading.ConvertPercentToGrade(table, 0), ShouldEqual, 5.0)
		})

		Convey("And the input table is left untouched", func() {
			grading.ConvertPercentToGrade(table, 60)
			So(table, ShouldResemble, before)
		})
	})

	Convey("Given random tables", t, func() {
		rng := rand.New(rand.NewSource(11))

		Convey("Then the result is the grade of the highest percentFrom not above the input", func() {
			for i := 0; i < 300; i++ {
				var table []model.Threshold
				for j := 0; j < 1+rng.Intn(8); j++ {
					table = append(table, model.Threshold{
						PercentFrom: float64(rng.Intn(101)),
						Grade:       1 + float64(rng.Intn(17))*0.25,
					})
				}
				percent := rng.Float64() * 100

				want := model.WorstGrade
				best := math.Inf(-1)
				for _, row := range table {
					if row.PercentFrom <= percent && row.PercentFrom > best {
						best, want = row.PercentFrom, row.Grade
					}
				}
				So(grading.ConvertPercentToGrade(table, percent), ShouldEqual, want)
			}
		})
	})

	Convey("Given two rows sharing a percentFrom", t, func() {
		table := []model.Threshold{
			{ID: "first", PercentFrom: 60, Grade: 2.5},
			{ID: "other", PercentFrom: 90, Grade: 1.0},
			{ID: "second", PercentFrom: 60, Grade: 3.0},
		}

		Convey("Then the row earlier in table order wins", func() {
			So(grading.ConvertPercentToGrade(table, 70), ShouldEqual, 2.5)
		})
	})
}

func TestOverallAverage(t *testing.T) {
	single := func(grade float64) []model.Threshold {
		return []model.Threshold{{PercentFrom: 0, Grade: grade}}
	}

	Convey("Given two subjects graded 1.25 and 1.75", t, func() {
		subjects := []model.Subject{
			{ID: "a", Name: "Algebra", Conversion: single(1.25)},
			{ID: "b", Name: "Biology", Conversion: single(1.75)},
		}
		sum := grading.OverallAverage(subjects)

		Convey("Then the average is 1.5 in the cum laude tier", func() {
			So(sum.Count, ShouldEqual, 2)
			So(sum.Average, ShouldAlmostEqual, 1.5)
			So(sum.Honors, ShouldEqual, grading.HonorsCum)
		})

		Convey("And lowest and highest point at the best and worst subject", func() {
			So(sum.Lowest.SubjectID, ShouldEqual, "a")
			So(sum.Highest.SubjectID, ShouldEqual, "b")
		})
	})

	Convey("Given subjects with tied grades", t, func() {
		subjects := []model.Subject{
			{ID: "x", Conversion: single(2.0)},
			{ID: "y", Conversion: single(2.0)},
		}
		sum := grading.OverallAverage(subjects)

		Convey("Then the first seen subject wins both ties", func() {
			So(sum.Lowest.SubjectID, ShouldEqual, "x")
			So(sum.Highest.SubjectID, ShouldEqual, "x")
		})
	})

	Convey("Given a subject whose grade is not a number", t, func() {
		subjects := []model.Subject{
			{ID: "ok", Conversion: single(1.0)},
			{ID: "bad", Conversion: single(math.NaN())},
		}
		sum := grading.OverallAverage(subjects)

		Convey("Then it is excluded from the average", func() {
			So(sum.Count, ShouldEqual, 1)
			So(sum.Average, ShouldEqual, 1.0)
			So(sum.Honors, ShouldEqual, grading.HonorsSumma)
		})
	})

	Convey("Given no subjects", t, func() {
		sum := grading.OverallAverage(nil)
		So(sum.Count, ShouldEqual, 0)
		So(sum.Honors, ShouldEqual, grading.HonorsNone)
	})
}

func TestHonorsFor(t *testing.T) {
	Convey("Given averages on and around the tier boundaries", t, func() {
		So(grading.HonorsFor(1.0), ShouldEqual, grading.HonorsSumma)
		So(grading.HonorsFor(1.25), ShouldEqual, grading.HonorsSumma)
		So(grading.HonorsFor(1.26), ShouldEqual, grading.HonorsMagna)
		So(grading.HonorsFor(1.45), ShouldEqual, grading.HonorsMagna)
		So(grading.HonorsFor(1.5), ShouldEqual, grading.HonorsCum)
		So(grading.HonorsFor(1.75), ShouldEqual, grading.HonorsCum)
		So(grading.HonorsFor(1.76), ShouldEqual, grading.HonorsNone)
	})
}

func TestReport(t *testing.T) {
	Convey("Given a subject with two components", t, func() {
		s := model.Subject{
			ID:   "s",
			Name: "Physics",
			Components: []model.Component{
				comp("Quizzes", 30, 8, 10),
				comp("Finals", 70, 9, 10),
			},
			Conversion: model.DefaultConversion(),
		}
		r := grading.Report(s)

		Convey("Then the report carries percent, grade and breakdown", func() {
			So(r.Percent, ShouldAlmostEqual, 87, 1e-9)
			So(r.Grade, ShouldEqual, 1.5)
			So(r.TotalWeight, ShouldEqual, 100)
			So(len(r.Components), ShouldEqual, 2)
			So(r.Components[0].NormalizedWeight, ShouldAlmostEqual, 0.3)
			So(r.Components[1].ScoreSum, ShouldEqual, 9)
			So(r.Components[1].MaxSum, ShouldEqual, 10)
		})
	})

	Convey("Given an overview over no subjects", t, func() {
		o := grading.Overview(nil)

		Convey("Then average and extremes are absent", func() {
			So(o.Count, ShouldEqual, 0)
			So(o.Average, ShouldBeNil)
			So(o.Lowest, ShouldBeNil)
			So(o.Subjects, ShouldBeEmpty)
		})
	})
}
