package numeric_test

import (
	"math"
	"testing"

	"github.com/okian/upg/internal/domain/numeric"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseClamp(t *testing.T) {
	Convey("Given raw numeric input", t, func() {
		Convey("When the input is a plain number within bounds", func() {
			So(numeric.ParseClamp("42", 0, 100), ShouldEqual, 42)
			So(numeric.ParseClamp(" 7.5 ", 0, 100), ShouldEqual, 7.5)
			So(numeric.ParseClamp("1e1", 0, 100), ShouldEqual, 10)
		})

		Convey("When the input is not numeric", func() {
			So(numeric.ParseClamp("abc", 0, 100), ShouldEqual, 0)
			So(numeric.ParseClamp("", 0, 100), ShouldEqual, 0)
			So(numeric.ParseClamp("NaN", 0, 100), ShouldEqual, 0)
			So(numeric.ParseClamp("Inf", 0, math.Inf(1)), ShouldEqual, 0)
		})

		Convey("When the input falls outside the bounds", func() {
			So(numeric.ParseClamp("150", 0, 100), ShouldEqual, 100)
			So(numeric.ParseClamp("-3", 0, 100), ShouldEqual, 0)
			So(numeric.ParseClamp("0.5", 1, 5), ShouldEqual, 1)
			So(numeric.ParseClamp("9", 1, 5), ShouldEqual, 5)
		})

		Convey("When non-numeric input meets a positive lower bound", func() {
			So(numeric.ParseClamp("grade", 1, 5), ShouldEqual, 1)
		})

		Convey("When the input has more than two decimals", func() {
			So(numeric.ParseClamp("1.236", 0, 5), ShouldEqual, 1.24)
			So(numeric.ParseClamp("99.994", 0, 100), ShouldEqual, 99.99)
		})

		Convey("When the upper bound is unbounded", func() {
			So(numeric.ParseClamp("12345.678", 0, math.Inf(1)), ShouldEqual, 12345.68)
		})
	})
}

func TestClampAndFinite(t *testing.T) {
	Convey("Given decoded numbers", t, func() {
		So(numeric.Clamp(math.NaN(), 0, 100), ShouldEqual, 0)
		So(numeric.Clamp(101, 0, 100), ShouldEqual, 100)
		So(numeric.Finite(math.Inf(-1)), ShouldEqual, 0)
		So(numeric.Finite(3.5), ShouldEqual, 3.5)
	})
}
