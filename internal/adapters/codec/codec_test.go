package codec_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/upg/internal/adapters/codec"
	"github.com/okian/upg/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleState() *model.State {
	s := model.Seed()
	subj := &s.Subjects[0]
	e := subj.Components[0].AddEntry("Quiz 1")
	e.Score, e.Max = 8.5, 10
	subj.Components[1].AddEntry("Essay").Max = 20
	s.AddSubject("Second")
	s.Theme = model.ThemeLight
	s.View = model.ViewAbout
	return s
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []codec.Format{codec.FormatJSON, codec.FormatYAML} {
		Convey("Given a populated document encoded as "+string(f), t, func() {
			orig := sampleState()
			data, err := codec.Encode(orig, f)
			So(err, ShouldBeNil)

			Convey("When it is decoded again", func() {
				back, err := codec.Decode(data, f)
				So(err, ShouldBeNil)

				Convey("Then the document is structurally identical", func() {
					So(back, ShouldResemble, orig)
				})

				Convey("And re-encoding yields the same bytes", func() {
					again, err := codec.Encode(back, f)
					So(err, ShouldBeNil)
					So(string(again), ShouldEqual, string(data))
				})
			})
		})
	}
}

func TestEncodeJSON(t *testing.T) {
	Convey("Given a document without a selection", t, func() {
		s := &model.State{Subjects: []model.Subject{}, Theme: model.ThemeDark, View: model.ViewSubjects}
		data, err := codec.Encode(s, codec.FormatJSON)
		So(err, ShouldBeNil)

		Convey("Then the selection encodes as null with two-space indentation", func() {
			out := string(data)
			So(out, ShouldContainSubstring, `"selectedSubjectId": null`)
			So(out, ShouldContainSubstring, "\n  \"subjects\": []")
		})
	})

	Convey("Given threshold rows", t, func() {
		s := sampleState()
		data, err := codec.Encode(s, codec.FormatJSON)
		So(err, ShouldBeNil)

		Convey("Then field names follow the document layout", func() {
			So(string(data), ShouldContainSubstring, `"percentFrom": 95`)
			So(string(data), ShouldContainSubstring, `"conversion": [`)
		})
	})
}

func TestDecodeRejectsMalformed(t *testing.T) {
	Convey("Given inputs that are not documents", t, func() {
		inputs := []string{
			`{{{`,
			`[1,2,3]`,
			`null`,
			`{"theme":"dark"}`,
			`{"subjects":{"a":1}}`,
			`{"subjects":"none"}`,
			`{"subjects":[1]}`,
		}
		for _, input := range inputs {
			_, err := codec.Decode([]byte(input), codec.FormatJSON)
			So(errors.Is(err, codec.ErrMalformedDocument), ShouldBeTrue)
		}
	})

	Convey("Given YAML inputs that are not documents", t, func() {
		for _, input := range []string{"- a\n- b\n", "subjects: nope\n", "", "theme: dark\n"} {
			_, err := codec.Decode([]byte(input), codec.FormatYAML)
			So(errors.Is(err, codec.ErrMalformedDocument), ShouldBeTrue)
		}
	})
}

func TestDecodeDefaults(t *testing.T) {
	Convey("Given a minimal document", t, func() {
		input := `{"subjects":[{"id":"s1","name":"Math","components":[],"conversion":[{"id":"t","percentFrom":50,"grade":3}]},{"id":"s2","name":"Art"}]}`
		s, err := codec.Decode([]byte(input), codec.FormatJSON)
		So(err, ShouldBeNil)

		Convey("Then the selection, theme and view are defaulted", func() {
			So(s.SelectedSubjectID, ShouldEqual, "s1")
			So(s.Theme, ShouldEqual, model.ThemeDark)
			So(s.View, ShouldEqual, model.ViewSubjects)
		})

		Convey("And a missing conversion table is reseeded", func() {
			So(len(s.Subjects[1].Conversion), ShouldEqual, 12)
			So(len(s.Subjects[0].Conversion), ShouldEqual, 1)
		})
	})

	Convey("Given an empty subject list", t, func() {
		s, err := codec.Decode([]byte(`{"subjects":[]}`), codec.FormatJSON)
		So(err, ShouldBeNil)
		So(s.SelectedSubjectID, ShouldEqual, "")
		So(s.Subjects, ShouldBeEmpty)
	})

	Convey("Given an explicit light theme and selection", t, func() {
		s, err := codec.Decode([]byte(`{"subjects":[{"id":"a"},{"id":"b"}],"selectedSubjectId":"b","theme":"light","view":"about"}`), codec.FormatJSON)
		So(err, ShouldBeNil)
		So(s.SelectedSubjectID, ShouldEqual, "b")
		So(s.Theme, ShouldEqual, model.ThemeLight)
		So(s.View, ShouldEqual, model.ViewAbout)
	})
}

func TestDecodeAssignsIDs(t *testing.T) {
	Convey("Given a hand-written document without ids", t, func() {
		input := `{"subjects":[{"name":"Math","components":[{"name":"Quiz","weight":100,
			"entries":[{"label":"Q1","score":8,"max":10}]}],"conversion":[{"percentFrom":75,"grade":2}]}]}`
		s, err := codec.Decode([]byte(input), codec.FormatJSON)
		So(err, ShouldBeNil)
		subj := s.Subjects[0]

		Convey("Then every entity gets an id and the subject is selected", func() {
			So(subj.ID, ShouldNotBeEmpty)
			So(subj.Components[0].ID, ShouldNotBeEmpty)
			So(subj.Components[0].Entries[0].ID, ShouldNotBeEmpty)
			So(subj.Conversion[0].ID, ShouldNotBeEmpty)
			So(s.SelectedSubjectID, ShouldEqual, subj.ID)
		})
	})

	Convey("Given a document with repeated ids", t, func() {
		input := `{"subjects":[
			{"id":"a","name":"One","components":[{"id":"c","name":"X"},{"id":"c","name":"Y"}]},
			{"id":"a","name":"Two","conversion":[{"id":"t"},{"id":"t"}]}
		],"selectedSubjectId":"a"}`
		s, err := codec.Decode([]byte(input), codec.FormatJSON)
		So(err, ShouldBeNil)

		Convey("Then the first occurrence keeps its id and later ones get fresh ids", func() {
			So(s.Subjects[0].ID, ShouldEqual, "a")
			So(s.Subjects[1].ID, ShouldNotEqual, "a")
			So(s.Subjects[0].Components[0].ID, ShouldEqual, "c")
			So(s.Subjects[0].Components[1].ID, ShouldNotEqual, "c")
			So(s.Subjects[1].Conversion[1].ID, ShouldNotEqual, s.Subjects[1].Conversion[0].ID)
			So(s.SelectedSubjectID, ShouldEqual, "a")
		})
	})

	Convey("Given a selection that names no subject", t, func() {
		s, err := codec.Decode([]byte(`{"subjects":[{"id":"a"}],"selectedSubjectId":"zzz"}`), codec.FormatJSON)
		So(err, ShouldBeNil)
		So(s.SelectedSubjectID, ShouldEqual, "a")
	})
}

func TestDecodeLenientNumbers(t *testing.T) {
	Convey("Given numeric fields carrying odd values", t, func() {
		input := `{"subjects":[{"id":"s","name":"X","components":[{"id":"c","name":"Q","weight":"40","entries":[
			{"id":"e1","label":"a","score":"7.5","max":10},
			{"id":"e2","label":"b","score":null,"max":"ten"},
			{"id":"e3","label":3,"score":true,"max":{"x":1}}
		]}],"conversion":[{"id":"t","percentFrom":"75","grade":"2"}]}]}`
		s, err := codec.Decode([]byte(input), codec.FormatJSON)
		So(err, ShouldBeNil)
		c := s.Subjects[0].Components[0]

		Convey("Then they are coerced instead of rejected", func() {
			So(c.Weight, ShouldEqual, 40)
			So(c.Entries[0].Score, ShouldEqual, 7.5)
			So(c.Entries[1].Score, ShouldEqual, 0)
			So(c.Entries[1].Max, ShouldEqual, 0)
			So(c.Entries[2].Label, ShouldEqual, "3")
			So(c.Entries[2].Score, ShouldEqual, 1)
			So(c.Entries[2].Max, ShouldEqual, 0)
			So(s.Subjects[0].Conversion[0].PercentFrom, ShouldEqual, 75)
			So(s.Subjects[0].Conversion[0].Grade, ShouldEqual, 2)
		})
	})

	Convey("Given a YAML document with quoted numbers", t, func() {
		input := strings.Join([]string{
			"subjects:",
			"  - id: s",
			"    name: Y",
			"    components:",
			"      - id: c",
			"        name: Q",
			"        weight: '25'",
			"        entries:",
			"          - {id: e, label: l, score: 3, max: four}",
			"    conversion: []",
			"theme: light",
		}, "\n")
		s, err := codec.Decode([]byte(input), codec.FormatYAML)
		So(err, ShouldBeNil)

		Convey("Then values are coerced the same way", func() {
			So(s.Subjects[0].Components[0].Weight, ShouldEqual, 25)
			So(s.Subjects[0].Components[0].Entries[0].Score, ShouldEqual, 3)
			So(s.Subjects[0].Components[0].Entries[0].Max, ShouldEqual, 0)
			So(s.Theme, ShouldEqual, model.ThemeLight)
			So(s.SelectedSubjectID, ShouldEqual, "s")
		})
	})
}

func TestFormats(t *testing.T) {
	Convey("Given format names", t, func() {
		f, err := codec.ParseFormat("")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, codec.FormatJSON)
		f, err = codec.ParseFormat("YML")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, codec.FormatYAML)
		_, err = codec.ParseFormat("xml")
		So(errors.Is(err, codec.ErrUnsupportedFormat), ShouldBeTrue)

		So(codec.FormatFromFilename("upg-data.yaml"), ShouldEqual, codec.FormatYAML)
		So(codec.FormatFromFilename("upg-data.json"), ShouldEqual, codec.FormatJSON)
		So(codec.FormatYAML.Ext(), ShouldEqual, "yaml")
		So(codec.FormatJSON.ContentType(), ShouldStartWith, "application/json")

		_, err = codec.Encode(model.Seed(), codec.Format("xml"))
		So(errors.Is(err, codec.ErrUnsupportedFormat), ShouldBeTrue)
	})
}
