package rotation_test

import (
	"testing"

	"github.com/okian/peereval/internal/domain/model"
	"github.com/okian/peereval/internal/domain/rotation"
	. "github.com/smartystreets/goconvey/convey"
)

func member(name string, track model.Track) model.Member {
	return model.Member{Name: name, Track: track}
}

func names(ms []model.Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func TestIsOddWeek(t *testing.T) {
	Convey("Given weeks 1 through 30", t, func() {
		Convey("Then IsOddWeek should match w mod 2 == 1", func() {
			for w := 1; w <= 30; w++ {
				So(rotation.IsOddWeek(w), ShouldEqual, w%2 == 1)
			}
		})
	})
}

func TestSelectNextScenarios(t *testing.T) {
	Convey("Given roster A(energy), B(automation), C(shared)", t, func() {
		roster := []model.Member{
			member("A", model.TrackEnergy),
			member("B", model.TrackAutomation),
			member("C", model.TrackShared),
		}

		Convey("When A asks for week 1 with no history", func() {
			next, ok := rotation.SelectNext(roster, nil, 1, "A")

			Convey("Then C should be returned", func() {
				So(ok, ShouldBeTrue)
				So(next.Name, ShouldEqual, "C")
			})
		})

		Convey("When C asks for week 2 with no history", func() {
			next, ok := rotation.SelectNext(roster, nil, 2, "C")

			Convey("Then B should be returned", func() {
				So(ok, ShouldBeTrue)
				So(next.Name, ShouldEqual, "B")
			})
		})

		Convey("When C asks for week 1", func() {
			next, ok := rotation.SelectNext(roster, nil, 1, "C")

			Convey("Then A should be returned", func() {
				So(ok, ShouldBeTrue)
				So(next.Name, ShouldEqual, "A")
			})
		})

		Convey("When A asks for week 2", func() {
			_, ok := rotation.SelectNext(roster, nil, 2, "A")

			Convey("Then nobody should be eligible", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When B asks for week 2", func() {
			next, ok := rotation.SelectNext(roster, nil, 2, "B")

			Convey("Then the shared member should be returned", func() {
				So(ok, ShouldBeTrue)
				So(next.Name, ShouldEqual, "C")
			})
		})

		Convey("When A already evaluated C in week 1", func() {
			history := []model.Record{{Week: 1, Evaluator: "A", Evaluated: "C", Score: 14}}
			_, ok := rotation.SelectNext(roster, history, 1, "A")

			Convey("Then C should not be returned again", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the evaluator is unset", func() {
			_, ok := rotation.SelectNext(roster, nil, 1, "")

			Convey("Then the result should be none", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the evaluator is not on the roster", func() {
			_, ok := rotation.SelectNext(roster, nil, 1, "Z")

			Convey("Then the result should be none", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestSelectNextProperties(t *testing.T) {
	Convey("Given a mixed roster", t, func() {
		roster := []model.Member{
			member("E1", model.TrackEnergy),
			member("A1", model.TrackAutomation),
			member("S1", model.TrackShared),
			member("E2", model.TrackEnergy),
			member("A2", model.TrackAutomation),
			member("S2", model.TrackShared),
			member("X1", model.TrackUnknown),
			member("E3", model.TrackEnergy),
		}

		Convey("Then an energy evaluator in an odd week is never offered automation", func() {
			for _, w := range []int{1, 3, 5, 15} {
				for _, c := range rotation.Pending(roster, nil, w, "E1") {
					So(c.Track, ShouldNotEqual, model.TrackAutomation)
				}
			}
		})

		Convey("And nobody is ever offered themselves", func() {
			for w := 1; w <= 4; w++ {
				for _, m := range roster {
					for _, c := range rotation.Pending(roster, nil, w, m.Name) {
						So(c.Name, ShouldNotEqual, m.Name)
					}
				}
			}
		})

		Convey("And an unknown track has no candidates", func() {
			So(rotation.Pending(roster, nil, 1, "X1"), ShouldBeEmpty)
			So(rotation.Pending(roster, nil, 2, "X1"), ShouldBeEmpty)
		})

		Convey("And eligible candidates keep roster order", func() {
			So(names(rotation.Pending(roster, nil, 1, "E1")), ShouldResemble, []string{"S1", "E2", "S2", "E3"})
			So(names(rotation.Pending(roster, nil, 2, "E1")), ShouldResemble, []string{"E2", "E3"})
			So(names(rotation.Pending(roster, nil, 2, "A2")), ShouldResemble, []string{"A1", "S1", "S2"})
			So(names(rotation.Pending(roster, nil, 1, "S2")), ShouldResemble, []string{"E1", "E2", "E3"})
		})

		Convey("When working through the queue one record at a time", func() {
			var history []model.Record
			var seen []string
			for {
				next, ok := rotation.SelectNext(roster, history, 1, "E1")
				if !ok {
					break
				}
				seen = append(seen, next.Name)
				history = append(history, model.Record{Week: 1, Evaluator: "E1", Evaluated: next.Name, Score: 10})
			}

			Convey("Then every candidate should come up exactly once", func() {
				So(seen, ShouldResemble, []string{"S1", "E2", "S2", "E3"})
			})
		})

		Convey("When records exist for another week or evaluator", func() {
			history := []model.Record{
				{Week: 3, Evaluator: "E1", Evaluated: "S1"},
				{Week: 1, Evaluator: "E2", Evaluated: "S1"},
			}
			next, ok := rotation.SelectNext(roster, history, 1, "E1")

			Convey("Then they should not count as done", func() {
				So(ok, ShouldBeTrue)
				So(next.Name, ShouldEqual, "S1")
			})
		})
	})
}
