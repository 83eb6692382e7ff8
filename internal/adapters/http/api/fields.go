package api

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// rawNumber accepts a JSON number or string and keeps its text for
// numeric.ParseClamp. Any other JSON value becomes the empty string, which
// coerces to the lower bound.
type rawNumber string

func (n *rawNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*n = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = rawNumber(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*n = rawNumber(b)
	default:
		*n = ""
	}
	return nil
}

// ptr returns the text as a patch field, nil when the field was absent.
func (n *rawNumber) ptr() *string {
	if n == nil {
		return nil
	}
	s := string(*n)
	return &s
}

// numberString renders an optional JSON number for the add endpoints.
func numberString(n *rawNumber, fallback float64) string {
	if n == nil {
		return strconv.FormatFloat(fallback, 'f', -1, 64)
	}
	return string(*n)
}
