package scoring_test

import (
	"errors"
	"testing"

	"github.com/okian/peereval/internal/domain/model"
	"github.com/okian/peereval/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseScore(t *testing.T) {
	Convey("Given score text", t, func() {
		Convey("When it is a number inside [0, 20]", func() {
			for text, want := range map[string]float64{
				"0":      0,
				"20":     20,
				"12.5":   12.5,
				" 7 ":    7,
				"12,5":   12.5,
				"19.999": 19.999,
			} {
				v, err := scoring.ParseScore(text)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, want)
			}
		})

		Convey("When it is out of range", func() {
			for _, text := range []string{"21", "-1", "20.01"} {
				_, err := scoring.ParseScore(text)
				So(errors.Is(err, scoring.ErrInvalidScore), ShouldBeTrue)
			}
		})

		Convey("When it is not a number", func() {
			for _, text := range []string{"abc", "NaN", "Inf", "1,2,3", "1.5,2"} {
				_, err := scoring.ParseScore(text)
				So(errors.Is(err, scoring.ErrInvalidScore), ShouldBeTrue)
			}
		})

		Convey("When it is blank", func() {
			_, err := scoring.ParseScore("   ")

			Convey("Then it should report an empty score", func() {
				So(errors.Is(err, scoring.ErrEmptyScore), ShouldBeTrue)
				So(errors.Is(err, scoring.ErrInvalidScore), ShouldBeFalse)
			})
		})
	})
}

func TestAverageScore(t *testing.T) {
	Convey("Given an evaluation history", t, func() {
		records := []model.Record{
			{Week: 1, Evaluator: "A", Evaluated: "C", Score: 10},
			{Week: 2, Evaluator: "B", Evaluated: "C", Score: 20},
			{Week: 1, Evaluator: "C", Evaluated: "A", Score: 13},
			{Week: 2, Evaluator: "C", Evaluated: "A", Score: 14},
			{Week: 3, Evaluator: "C", Evaluated: "A", Score: 14},
		}

		Convey("When averaging a member scored 10 and 20", func() {
			avg, ok := scoring.AverageScore(records, "C")

			Convey("Then the mean should be 15.00", func() {
				So(ok, ShouldBeTrue)
				So(avg, ShouldEqual, 15.0)
			})
		})

		Convey("When the mean has more than two decimals", func() {
			avg, ok := scoring.AverageScore(records, "A")

			Convey("Then it should be rounded to two", func() {
				So(ok, ShouldBeTrue)
				So(avg, ShouldEqual, 13.67)
			})
		})

		Convey("When the member has no records", func() {
			_, ok := scoring.AverageScore(records, "B")

			Convey("Then there should be no value", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When there are no records at all", func() {
			_, ok := scoring.AverageScore(nil, "A")
			So(ok, ShouldBeFalse)
		})

		Convey("When a row has no usable score", func() {
			withBlank := append(records, model.Record{Week: 3, Evaluator: "B", Evaluated: "C", Unscored: true})
			avg, ok := scoring.AverageScore(withBlank, "C")

			Convey("Then it should not move the mean", func() {
				So(ok, ShouldBeTrue)
				So(avg, ShouldEqual, 15.0)
			})
		})

		Convey("When a member only has unscored rows", func() {
			only := []model.Record{{Week: 1, Evaluator: "A", Evaluated: "B", Unscored: true}}
			_, ok := scoring.AverageScore(only, "B")

			Convey("Then there should be no value", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestAverages(t *testing.T) {
	Convey("Given a roster and history", t, func() {
		roster := []model.Member{
			{Name: "A", Track: model.TrackEnergy},
			{Name: "B", Track: model.TrackAutomation},
			{Name: "C", Track: model.TrackShared},
		}
		records := []model.Record{
			{Week: 1, Evaluator: "A", Evaluated: "C", Score: 10},
			{Week: 2, Evaluator: "B", Evaluated: "C", Score: 20},
			{Week: 3, Evaluator: "A", Evaluated: "C", Unscored: true},
		}

		Convey("When building the averages table", func() {
			rows := scoring.Averages(roster, records)

			Convey("Then it should keep roster order and render placeholders", func() {
				So(len(rows), ShouldEqual, 3)
				So(rows[0].Member.Name, ShouldEqual, "A")
				So(rows[0].Display(), ShouldEqual, scoring.Placeholder)
				So(rows[1].Valid, ShouldBeFalse)
				So(rows[2].Count, ShouldEqual, 2)
				So(rows[2].Display(), ShouldEqual, "15.00")
			})
		})
	})
}
