// Package scoring computes section and overall completion scores for a
// participant's goal record. All functions are pure; inputs are assumed
// range-checked by the upstream forms.
package scoring

import "math"

type WeightedItem struct {
	Weight     float64
	Completion float64
}

type RatedItem struct {
	Rating int
}

type CompletedItem struct {
	Completion float64
}

// Scorecard carries the seven section scores plus the rounded overall
// score for one participant in one game.
type Scorecard struct {
	Vision      float64 `json:"vision"`
	Why         float64 `json:"why"`
	Objective   float64 `json:"objective"`
	KeyResults  float64 `json:"key_results"`
	Projects    float64 `json:"projects"`
	BeliefItems float64 `json:"belief_items"`
	Commitments float64 `json:"commitments"`
	Overall     int     `json:"overall"`
}

// WeightedAverage returns the weight-proportional mean completion, or 0
// when the collection is empty or its weights sum to zero.
func WeightedAverage(items []WeightedItem) float64 {
	var weightSum, total float64
	for _, item := range items {
		weightSum += item.Weight
		total += item.Weight * item.Completion
	}
	if weightSum == 0 {
		return 0
	}
	return total / weightSum
}

// RatingAverage maps 1–5 ratings onto a 0–100 scale: 100·Σrating/(5·n).
func RatingAverage(items []RatedItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum int
	for _, item := range items {
		sum += item.Rating
	}
	return 100 * float64(sum) / (5 * float64(len(items)))
}

// CommitmentAverage is the plain mean over the rows that exist; weeks
// never filled in do not count as zero.
func CommitmentAverage(items []CompletedItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range items {
		sum += item.Completion
	}
	return sum / float64(len(items))
}

// OverallScore averages the seven section scores with equal weight and
// rounds to the nearest integer.
func OverallScore(vision, why, objective, keyResults, projects, beliefs, commitments float64) int {
	return int(math.Round((vision + why + objective + keyResults + projects + beliefs + commitments) / 7))
}

func NewScorecard(vision, why, objective float64, keyResults, projects []WeightedItem, beliefs []RatedItem, commitments []CompletedItem) Scorecard {
	card := Scorecard{
		Vision:      vision,
		Why:         why,
		Objective:   objective,
		KeyResults:  WeightedAverage(keyResults),
		Projects:    WeightedAverage(projects),
		BeliefItems: RatingAverage(beliefs),
		Commitments: CommitmentAverage(commitments),
	}
	card.Overall = OverallScore(card.Vision, card.Why, card.Objective, card.KeyResults, card.Projects, card.BeliefItems, card.Commitments)
	return card
}
