package session

import (
	"math"
	"sort"
)

// weakScoreCeiling is the evaluation score below which a question
// counts toward a recommended focus area.
const weakScoreCeiling = 60

// maxFocusAreas caps the number of recommended focus areas.
const maxFocusAreas = 3

// Stats are session-level statistics derived from the question store.
// They are never stored; recomputing from the same questions always
// yields the same result.
type Stats struct {
	// AverageScore is the mean evaluation score over evaluated
	// questions, 0 when none have been evaluated.
	AverageScore float64 `json:"average_score"`

	// CompletionPercent is round(answered / total * 100), 0 for an
	// empty store.
	CompletionPercent int `json:"completion_percent"`

	// FocusAreas lists up to three interview types the candidate
	// should practice, weakest first.
	FocusAreas []InterviewType `json:"focus_areas"`

	// Answered and Evaluated are the underlying counts, kept for the
	// dashboard's progress widgets.
	Answered  int `json:"answered"`
	Evaluated int `json:"evaluated"`
	Total     int `json:"total"`
}

// Aggregate folds the ordered question store into Stats. It is a pure
// function of the store contents: no randomness, no dependence on call
// order.
func Aggregate(questions []*Question) Stats {
	stats := Stats{Total: len(questions)}

	var scoreSum int
	weak := make(map[InterviewType][]int)

	for _, q := range questions {
		if q.Answered() {
			stats.Answered++
		}
		if q.Evaluation == nil {
			continue
		}
		stats.Evaluated++
		scoreSum += q.Evaluation.Score
		if q.Evaluation.Score < weakScoreCeiling {
			weak[q.Type] = append(weak[q.Type], q.Evaluation.Score)
		}
	}

	if stats.Evaluated > 0 {
		stats.AverageScore = float64(scoreSum) / float64(stats.Evaluated)
	}
	if stats.Total > 0 {
		stats.CompletionPercent = int(math.Round(float64(stats.Answered) / float64(stats.Total) * 100))
	}
	stats.FocusAreas = rankFocusAreas(weak)

	return stats
}

// rankFocusAreas orders interview types ascending by the mean of their
// sub-60 scores. Ties break on type name so the ranking is stable.
func rankFocusAreas(weak map[InterviewType][]int) []InterviewType {
	type ranked struct {
		t    InterviewType
		mean float64
	}

	var areas []ranked
	for t, scores := range weak {
		sum := 0
		for _, s := range scores {
			sum += s
		}
		areas = append(areas, ranked{t: t, mean: float64(sum) / float64(len(scores))})
	}

	sort.Slice(areas, func(i, j int) bool {
		if areas[i].mean != areas[j].mean {
			return areas[i].mean < areas[j].mean
		}
		return areas[i].t < areas[j].t
	})

	if len(areas) > maxFocusAreas {
		areas = areas[:maxFocusAreas]
	}

	out := make([]InterviewType, len(areas))
	for i, a := range areas {
		out[i] = a.t
	}
	return out
}
