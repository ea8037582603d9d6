package model_test

import (
	"testing"

	"github.com/okian/peereval/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseTrack(t *testing.T) {
	convey.Convey("Given roster course labels", t, func() {
		cases := []struct {
			label string
			want  model.Track
		}{
			{"Energia", model.TrackEnergy},
			{" ENERGY ", model.TrackEnergy},
			{"Automação", model.TrackAutomation},
			{"automacao", model.TrackAutomation},
			{"AUTOMAÇÃO", model.TrackAutomation},
			{"Automation Track", model.TrackAutomation},
			{"TEC", model.TrackShared},
			{"tec", model.TrackShared},
			{"Shared", model.TrackShared},
			{"Química", model.TrackUnknown},
			{"", model.TrackUnknown},
		}

		convey.Convey("Then each should resolve to the expected track", func() {
			for _, c := range cases {
				convey.So(model.ParseTrack(c.label), convey.ShouldEqual, c.want)
			}
		})

		convey.Convey("And only the pairing tracks should be valid", func() {
			convey.So(model.TrackEnergy.Valid(), convey.ShouldBeTrue)
			convey.So(model.TrackShared.Valid(), convey.ShouldBeTrue)
			convey.So(model.TrackUnknown.Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestSnapshotLookup(t *testing.T) {
	convey.Convey("Given a snapshot with a duplicated name", t, func() {
		snap := model.Snapshot{Members: []model.Member{
			{Number: "1", Name: "Ana", Track: model.TrackEnergy},
			{Number: "2", Name: "Bruno", Track: model.TrackAutomation},
			{Number: "3", Name: "Ana", Track: model.TrackShared},
		}}

		convey.Convey("When looking up a member", func() {
			m, ok := snap.Member("Ana")

			convey.Convey("Then the first roster entry should win", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(m.Number, convey.ShouldEqual, "1")
			})
		})

		convey.Convey("When looking up an absent member", func() {
			_, ok := snap.Member("Carla")

			convey.Convey("Then it should not be found", func() {
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("Then names should keep roster order", func() {
			convey.So(snap.Names(), convey.ShouldResemble, []string{"Ana", "Bruno", "Ana"})
		})
	})
}
