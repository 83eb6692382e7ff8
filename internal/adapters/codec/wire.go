package codec

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/okian/upg/internal/domain/model"
	"github.com/okian/upg/internal/domain/numeric"
	"gopkg.in/yaml.v3"
)

// lenientFloat decodes any JSON/YAML value into a finite number.
// Numbers pass through, numeric strings are parsed, true is 1 and
// everything else is 0.
type lenientFloat float64

func (f *lenientFloat) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*f = 0
		return nil //nolint:nilerr // malformed scalars are coerced, not rejected
	}
	*f = lenientFloat(coerceFloat(v))
	return nil
}

func (f *lenientFloat) UnmarshalYAML(n *yaml.Node) error {
	var v any
	if err := n.Decode(&v); err != nil {
		*f = 0
		return nil //nolint:nilerr // malformed scalars are coerced, not rejected
	}
	*f = lenientFloat(coerceFloat(v))
	return nil
}

func coerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return numeric.Finite(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return numeric.Finite(x)
	default:
		return 0
	}
}

// lenientString decodes strings as-is, numbers and booleans in their text
// form, and everything else as the empty string.
type lenientString string

func (s *lenientString) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*s = ""
		return nil //nolint:nilerr // malformed scalars are coerced, not rejected
	}
	*s = lenientString(coerceString(v))
	return nil
}

func (s *lenientString) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag != "!!null" {
		*s = lenientString(n.Value)
		return nil
	}
	*s = ""
	return nil
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

type wireEntry struct {
	ID    lenientString `json:"id" yaml:"id"`
	Label lenientString `json:"label" yaml:"label"`
	Score lenientFloat  `json:"score" yaml:"score"`
	Max   lenientFloat  `json:"max" yaml:"max"`
}

type wireComponent struct {
	ID      lenientString `json:"id" yaml:"id"`
	Name    lenientString `json:"name" yaml:"name"`
	Weight  lenientFloat  `json:"weight" yaml:"weight"`
	Entries []wireEntry   `json:"entries" yaml:"entries"`
}

type wireThreshold struct {
	ID          lenientString `json:"id" yaml:"id"`
	PercentFrom lenientFloat  `json:"percentFrom" yaml:"percentFrom"`
	Grade       lenientFloat  `json:"grade" yaml:"grade"`
}

type wireSubject struct {
	ID         lenientString   `json:"id" yaml:"id"`
	Name       lenientString   `json:"name" yaml:"name"`
	Components []wireComponent `json:"components" yaml:"components"`
	Conversion []wireThreshold `json:"conversion" yaml:"conversion"`
}

// wireState is the document as it travels. SelectedSubjectID is a pointer so
// that "no selection" encodes as null.
type wireState struct {
	Subjects          []wireSubject  `json:"subjects" yaml:"subjects"`
	SelectedSubjectID *lenientString `json:"selectedSubjectId" yaml:"selectedSubjectId"`
	Theme             lenientString  `json:"theme" yaml:"theme"`
	View              lenientString  `json:"view" yaml:"view"`
}

func toWire(s *model.State) *wireState {
	out := &wireState{
		Subjects: make([]wireSubject, 0, len(s.Subjects)),
		Theme:    lenientString(s.Theme),
		View:     lenientString(s.View),
	}
	if s.SelectedSubjectID != "" {
		sel := lenientString(s.SelectedSubjectID)
		out.SelectedSubjectID = &sel
	}
	for _, subj := range s.Subjects {
		ws := wireSubject{
			ID:         lenientString(subj.ID),
			Name:       lenientString(subj.Name),
			Components: make([]wireComponent, 0, len(subj.Components)),
			Conversion: make([]wireThreshold, 0, len(subj.Conversion)),
		}
		for _, c := range subj.Components {
			wc := wireComponent{
				ID:      lenientString(c.ID),
				Name:    lenientString(c.Name),
				Weight:  lenientFloat(numeric.Finite(c.Weight)),
				Entries: make([]wireEntry, 0, len(c.Entries)),
			}
			for _, e := range c.Entries {
				wc.Entries = append(wc.Entries, wireEntry{
					ID:    lenientString(e.ID),
					Label: lenientString(e.Label),
					Score: lenientFloat(numeric.Finite(e.Score)),
					Max:   lenientFloat(numeric.Finite(e.Max)),
				})
			}
			ws.Components = append(ws.Components, wc)
		}
		for _, t := range subj.Conversion {
			ws.Conversion = append(ws.Conversion, wireThreshold{
				ID:          lenientString(t.ID),
				PercentFrom: lenientFloat(numeric.Finite(t.PercentFrom)),
				Grade:       lenientFloat(numeric.Finite(t.Grade)),
			})
		}
		out.Subjects = append(out.Subjects, ws)
	}
	return out
}

// ids hands out entity ids while decoding. Missing or repeated ids are
// replaced with fresh ones so every entity stays addressable.
type ids map[string]struct{}

func (seen ids) claim(id lenientString) string {
	v := strings.TrimSpace(string(id))
	if _, dup := seen[v]; v == "" || dup {
		v = model.NewID()
	}
	seen[v] = struct{}{}
	return v
}

// fromWire converts a decoded document and fills in defaults. An empty
// conversion table is replaced by the default one so the table is never
// empty once loaded. A selection that names no subject falls back to the
// first subject.
func fromWire(w *wireState) *model.State {
	out := &model.State{
		Subjects: make([]model.Subject, 0, len(w.Subjects)),
		Theme:    model.Theme(w.Theme),
		View:     model.View(w.View),
	}
	if w.SelectedSubjectID != nil {
		out.SelectedSubjectID = string(*w.SelectedSubjectID)
	}
	seen := ids{}
	for _, ws := range w.Subjects {
		subj := model.Subject{
			ID:         seen.claim(ws.ID),
			Name:       string(ws.Name),
			Components: make([]model.Component, 0, len(ws.Components)),
			Conversion: make([]model.Threshold, 0, len(ws.Conversion)),
		}
		for _, wc := range ws.Components {
			c := model.Component{
				ID:      seen.claim(wc.ID),
				Name:    string(wc.Name),
				Weight:  float64(wc.Weight),
				Entries: make([]model.Entry, 0, len(wc.Entries)),
			}
			for _, we := range wc.Entries {
				c.Entries = append(c.Entries, model.Entry{
					ID:    seen.claim(we.ID),
					Label: string(we.Label),
					Score: float64(we.Score),
					Max:   float64(we.Max),
				})
			}
			subj.Components = append(subj.Components, c)
		}
		for _, wt := range ws.Conversion {
			subj.Conversion = append(subj.Conversion, model.Threshold{
				ID:          seen.claim(wt.ID),
				PercentFrom: float64(wt.PercentFrom),
				Grade:       float64(wt.Grade),
			})
		}
		if len(subj.Conversion) == 0 {
			subj.Conversion = model.DefaultConversion()
		}
		out.Subjects = append(out.Subjects, subj)
	}

	if _, err := out.FindSubject(out.SelectedSubjectID); err != nil {
		out.SelectedSubjectID = ""
		if len(out.Subjects) > 0 {
			out.SelectedSubjectID = out.Subjects[0].ID
		}
	}
	if !out.Theme.Valid() {
		out.Theme = model.ThemeDark
	}
	if !out.View.Valid() {
		out.View = model.ViewSubjects
	}
	return out
}
