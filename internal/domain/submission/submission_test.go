package submission_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/peereval/internal/domain/model"
	"github.com/okian/peereval/internal/domain/submission"
	. "github.com/smartystreets/goconvey/convey"
)

func snapshot() model.Snapshot {
	return model.Snapshot{
		Members: []model.Member{
			{Name: "Alice", Track: model.TrackEnergy},
			{Name: "Bruno", Track: model.TrackAutomation},
			{Name: "Carla", Track: model.TrackShared},
		},
	}
}

func TestValidate(t *testing.T) {
	Convey("Given the A/B/C roster", t, func() {
		snap := snapshot()

		Convey("When Alice submits a valid score in week 1", func() {
			v, err := submission.Validate(snap, submission.Request{Week: 1, Evaluator: "Alice", Score: "15.5"}, 15)

			Convey("Then Carla should be the target", func() {
				So(err, ShouldBeNil)
				So(v.Target.Name, ShouldEqual, "Carla")
				So(v.Record(), ShouldResemble, model.Record{Week: 1, Evaluator: "Alice", Evaluated: "Carla", Score: 15.5})
			})
		})

		Convey("When the evaluator is unset", func() {
			_, err := submission.Validate(snap, submission.Request{Week: 1, Score: "10"}, 15)
			So(errors.Is(err, submission.ErrMissingSelection), ShouldBeTrue)
		})

		Convey("When the score is empty", func() {
			_, err := submission.Validate(snap, submission.Request{Week: 1, Evaluator: "Alice", Score: " "}, 15)
			So(errors.Is(err, submission.ErrMissingSelection), ShouldBeTrue)
		})

		Convey("When no target remains", func() {
			snap.Records = []model.Record{{Week: 1, Evaluator: "Alice", Evaluated: "Carla", Score: 12}}
			_, err := submission.Validate(snap, submission.Request{Week: 1, Evaluator: "Alice", Score: "10"}, 15)
			So(errors.Is(err, submission.ErrMissingSelection), ShouldBeTrue)
		})

		Convey("When the score is out of range or not a number", func() {
			for _, score := range []submission.ScoreText{"21", "-1", "abc"} {
				_, err := submission.Validate(snap, submission.Request{Week: 1, Evaluator: "Alice", Score: score}, 15)
				So(errors.Is(err, submission.ErrInvalidScore), ShouldBeTrue)
			}
		})

		Convey("When the week is outside the configured range", func() {
			for _, week := range []int{0, -3, 16} {
				_, err := submission.Validate(snap, submission.Request{Week: week, Evaluator: "Alice", Score: "10"}, 15)
				So(errors.Is(err, submission.ErrInvalidWeek), ShouldBeTrue)
			}
		})

		Convey("When the evaluator is misspelled", func() {
			_, err := submission.Validate(snap, submission.Request{Week: 1, Evaluator: "Alcie", Score: "10"}, 15)

			Convey("Then an unknown member error with a suggestion should be returned", func() {
				So(errors.Is(err, submission.ErrUnknownMember), ShouldBeTrue)
				var unknown *submission.UnknownMemberError
				So(errors.As(err, &unknown), ShouldBeTrue)
				So(unknown.Suggestion, ShouldEqual, "Alice")
				So(err.Error(), ShouldContainSubstring, `did you mean "Alice"`)
			})
		})
	})
}

func TestSuggest(t *testing.T) {
	Convey("Given roster names", t, func() {
		names := []string{"Alice", "Bruno", "Carla", "João Pedro"}

		Convey("Then close names should be suggested", func() {
			So(submission.Suggest("bruna", names), ShouldEqual, "Bruno")
			So(submission.Suggest("joao pedro", names), ShouldEqual, "João Pedro")
		})

		Convey("And distant names should not", func() {
			So(submission.Suggest("Zeferino", names), ShouldEqual, "")
			So(submission.Suggest("", names), ShouldEqual, "")
		})
	})
}

func TestScoreTextJSON(t *testing.T) {
	Convey("Given JSON submissions", t, func() {
		Convey("When the score is a number", func() {
			var req submission.Request
			So(json.Unmarshal([]byte(`{"week":2,"evaluator":"Bruno","score":12.5}`), &req), ShouldBeNil)
			So(req.Score, ShouldEqual, submission.ScoreText("12.5"))
		})

		Convey("When the score is a string", func() {
			var req submission.Request
			So(json.Unmarshal([]byte(`{"week":2,"evaluator":"Bruno","score":"12,5"}`), &req), ShouldBeNil)
			So(req.Score, ShouldEqual, submission.ScoreText("12,5"))
		})

		Convey("When the score is null", func() {
			var req submission.Request
			So(json.Unmarshal([]byte(`{"week":2,"evaluator":"Bruno","score":null}`), &req), ShouldBeNil)
			So(req.Score, ShouldEqual, submission.ScoreText(""))
		})

		Convey("When the score is an object", func() {
			var req submission.Request
			So(json.Unmarshal([]byte(`{"week":2,"score":{}}`), &req), ShouldNotBeNil)
		})
	})
}
