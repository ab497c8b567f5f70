package classify_test

import (
	"testing"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/classify"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ranked(scores ...float64) []model.ScoredCandidate {
	out := make([]model.ScoredCandidate, len(scores))
	for i, s := range scores {
		out[i] = model.ScoredCandidate{Rank: i + 1, Score: s}
	}
	return out
}

func TestClassifier_Fraction(t *testing.T) {
	Convey("Given a default classifier", t, func() {
		c := classify.New()
		So(c.Mode(), ShouldEqual, classify.ModeFraction)

		Convey("When two candidates score 0.6 and 0", func() {
			entries := ranked(0.6, 0)
			c.Apply(entries)

			Convey("Then the first is shortlisted and the second not recommended", func() {
				So(entries[0].Status, ShouldEqual, model.StatusShortlisted)
				So(entries[1].Status, ShouldEqual, model.StatusNotRecommended)
			})
		})

		Convey("When five strong candidates are ranked", func() {
			entries := ranked(0.9, 0.8, 0.7, 0.6, 0.5)
			c.Apply(entries)

			Convey("Then tiers follow ceil of the fractions", func() {
				got := []model.Status{}
				for _, e := range entries {
					got = append(got, e.Status)
				}
				So(got, ShouldResemble, []model.Status{
					model.StatusShortlisted, model.StatusShortlisted,
					model.StatusPromising, model.StatusPromising,
					model.StatusNotRecommended,
				})
			})
		})

		Convey("When a top candidate falls below the shortlist floor", func() {
			entries := ranked(0.2, 0.15, 0.05)
			c.Apply(entries)

			Convey("Then it is demoted but never below a worse-ranked peer", func() {
				So(entries[0].Status, ShouldEqual, model.StatusPromising)
				So(entries[1].Status, ShouldEqual, model.StatusPromising)
				So(entries[2].Status, ShouldEqual, model.StatusNotRecommended)
			})
		})

		Convey("When the rank is out of range", func() {
			So(c.Classify(model.ScoredCandidate{Rank: 0, Score: 1}, 3), ShouldEqual, model.StatusNotRecommended)
			So(c.Classify(model.ScoredCandidate{Rank: 4, Score: 1}, 3), ShouldEqual, model.StatusNotRecommended)
			So(c.Classify(model.ScoredCandidate{Rank: 1, Score: 1}, 0), ShouldEqual, model.StatusNotRecommended)
		})
	})
}

func TestClassifier_Count(t *testing.T) {
	Convey("Given a classifier in count mode", t, func() {
		c := classify.New(classify.WithCounts(1, 2), classify.WithMinScores(0, 0))

		Convey("Then tier sizes are fixed positions", func() {
			entries := ranked(0.5, 0.5, 0.4, 0.3, 0.2)
			c.Apply(entries)
			So(entries[0].Status, ShouldEqual, model.StatusShortlisted)
			So(entries[1].Status, ShouldEqual, model.StatusPromising)
			So(entries[2].Status, ShouldEqual, model.StatusPromising)
			So(entries[3].Status, ShouldEqual, model.StatusNotRecommended)
		})
	})
}

func TestClassifier_Monotonic(t *testing.T) {
	Convey("Classification never favours a worse rank", t, func() {
		for _, c := range []*classify.Classifier{
			classify.New(),
			classify.New(classify.WithCounts(2, 3)),
			classify.New(classify.WithFractions(0.1, 0.2)),
		} {
			for n := 1; n <= 12; n++ {
				scores := make([]float64, n)
				for i := range scores {
					scores[i] = 1 - float64(i)/float64(n)
				}
				entries := ranked(scores...)
				c.Apply(entries)
				for i := 1; i < n; i++ {
					So(entries[i-1].Status.Severity(), ShouldBeLessThanOrEqualTo, entries[i].Status.Severity())
				}
			}
		}
	})
}

func TestClassifier_ScaledFloors(t *testing.T) {
	Convey("Given floors of 0.3 and 0.1 on a 100 point scale", t, func() {
		c := classify.New(classify.WithCounts(2, 2), classify.WithMinScores(0.3, 0.1), classify.WithMaxScore(100))
		entries := ranked(90, 20, 15, 5)
		c.Apply(entries)

		Convey("Then the floors scale with the maximum score", func() {
			So(entries[0].Status, ShouldEqual, model.StatusShortlisted)
			So(entries[1].Status, ShouldEqual, model.StatusPromising)
			So(entries[2].Status, ShouldEqual, model.StatusPromising)
			So(entries[3].Status, ShouldEqual, model.StatusNotRecommended)
		})
	})

	Convey("Given an unusable maximum score", t, func() {
		c := classify.New(classify.WithCounts(1, 0), classify.WithMaxScore(-5))
		entries := ranked(0.35)
		c.Apply(entries)
		So(entries[0].Status, ShouldEqual, model.StatusShortlisted)
	})
}

func TestClassifier_InvalidOptions(t *testing.T) {
	Convey("Invalid options leave the defaults in place", t, func() {
		c := classify.New(classify.WithFractions(1.5, 0.2), classify.WithCounts(-1, 2), classify.WithMinScores(3, 0.1))
		So(c.Mode(), ShouldEqual, classify.ModeFraction)
		entries := ranked(0.9, 0.9, 0.9, 0.9, 0.9)
		c.Apply(entries)
		So(entries[1].Status, ShouldEqual, model.StatusShortlisted)
		So(entries[2].Status, ShouldEqual, model.StatusPromising)
	})
}
