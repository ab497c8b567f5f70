package model_test

import (
	"testing"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompareIDs(t *testing.T) {
	Convey("Given candidate identifiers", t, func() {
		Convey("Numeric identifiers compare by value", func() {
			So(model.CompareIDs("2", "10"), ShouldBeLessThan, 0)
			So(model.CompareIDs("10", "2"), ShouldBeGreaterThan, 0)
			So(model.CompareIDs("7", "7"), ShouldEqual, 0)
		})

		Convey("Other identifiers compare lexicographically", func() {
			So(model.CompareIDs("C10", "C2"), ShouldBeLessThan, 0)
			So(model.CompareIDs("abc", "abd"), ShouldBeLessThan, 0)
		})

		Convey("Numeric identifiers sort before non-numeric ones", func() {
			So(model.CompareIDs("99", "A1"), ShouldBeLessThan, 0)
			So(model.CompareIDs("A1", "99"), ShouldBeGreaterThan, 0)
		})

		Convey("Zero-padded duplicates still have a total order", func() {
			So(model.CompareIDs("007", "7"), ShouldBeLessThan, 0)
			So(model.CompareIDs("7", "007"), ShouldBeGreaterThan, 0)
		})
	})
}

func TestParseInternshipState(t *testing.T) {
	Convey("Upstream status strings map onto lifecycle states", t, func() {
		So(model.ParseInternshipState("Active"), ShouldEqual, model.InternshipActive)
		So(model.ParseInternshipState(" open "), ShouldEqual, model.InternshipActive)
		So(model.ParseInternshipState("Closed"), ShouldEqual, model.InternshipClosed)
		So(model.ParseInternshipState(""), ShouldEqual, model.InternshipClosed)
	})
}

func TestAllocationResult_Clone(t *testing.T) {
	Convey("Given a published result", t, func() {
		r := model.AllocationResult{
			InternshipID: "1",
			Version:      3,
			Entries: []model.ScoredCandidate{
				{CandidateID: "1", Rank: 1, Status: model.StatusShortlisted},
				{CandidateID: "7", Rank: 2, Status: model.StatusPromising},
			},
		}

		Convey("When the clone is modified", func() {
			c := r.Clone()
			c.Entries[0].Score = 42

			Convey("Then the original is untouched", func() {
				So(r.Entries[0].Score, ShouldEqual, 0)
				So(c.Version, ShouldEqual, 3)
			})
		})

		Convey("Shortlist keeps only shortlisted entries", func() {
			s := r.Shortlist()
			So(len(s), ShouldEqual, 1)
			So(s[0].CandidateID, ShouldEqual, "1")
		})
	})
}

func TestCandidate_AppliedTo(t *testing.T) {
	Convey("A candidate applied to the internships it lists", t, func() {
		c := model.Candidate{InternshipIDs: []string{"1", "3"}}
		So(c.AppliedTo("3"), ShouldBeTrue)
		So(c.AppliedTo("2"), ShouldBeFalse)
	})
}
