package goal

import (
	"fmt"
	"strings"
)

const minWeightedItems = 3

// ValidateSetup checks a participant's full goal record against the
// setup-completeness rules. Every rule is evaluated; violations come
// back in a fixed order so the checklist UI renders stably. An empty
// result means the participant may be marked setup-complete. The
// validator never mutates state; persisting the flag is the caller's
// job.
func ValidateSetup(gameName string, snap *Snapshot) []string {
	violations := []string{}

	if strings.TrimSpace(gameName) == "" {
		violations = append(violations, "game name must not be empty")
	}

	if snap.Vision == nil || strings.TrimSpace(snap.Vision.Content) == "" {
		violations = append(violations, "vision must not be empty")
	}
	if snap.Why == nil || strings.TrimSpace(snap.Why.Content) == "" {
		violations = append(violations, "why must not be empty")
	}
	if snap.Objective == nil || strings.TrimSpace(snap.Objective.Content) == "" {
		violations = append(violations, "objective must not be empty")
	}

	violations = append(violations, checkWeighted("key result", keyResultWeights(snap.KeyResults))...)
	violations = append(violations, checkWeighted("project", projectWeights(snap.Projects))...)

	var limiting, empowering int
	for _, item := range snap.BeliefItems {
		switch item.ItemType {
		case BeliefItemTypeLimiting:
			limiting++
		case BeliefItemTypeEmpowering:
			empowering++
		}
	}
	if limiting == 0 {
		violations = append(violations, "at least 1 limiting belief item is required")
	}
	if empowering == 0 {
		violations = append(violations, "at least 1 empowering belief item is required")
	}

	week1 := false
	for _, c := range snap.Commitments {
		if c.WeekNumber == 1 && strings.TrimSpace(c.Description) != "" {
			week1 = true
			break
		}
	}
	if !week1 {
		violations = append(violations, "the week 1 commitment must be filled in")
	}

	return violations
}

// checkWeighted applies the three collection rules shared by key
// results and projects: minimum count, positive weights, weights
// summing to exactly 100.
func checkWeighted(kind string, weights []int) []string {
	var violations []string

	if len(weights) < minWeightedItems {
		violations = append(violations, fmt.Sprintf("at least %d %ss are required (currently %d)", minWeightedItems, kind, len(weights)))
	}

	sum := 0
	allPositive := true
	for _, w := range weights {
		sum += w
		if w <= 0 {
			allPositive = false
		}
	}
	if !allPositive {
		violations = append(violations, fmt.Sprintf("every %s must have a weight greater than 0", kind))
	}
	if sum != 100 {
		violations = append(violations, fmt.Sprintf("%s weights must sum to 100 (currently %d)", kind, sum))
	}

	return violations
}

func keyResultWeights(items []KeyResult) []int {
	weights := make([]int, len(items))
	for i, item := range items {
		weights[i] = item.WeightPercentage
	}
	return weights
}

func projectWeights(items []Project) []int {
	weights := make([]int, len(items))
	for i, item := range items {
		weights[i] = item.WeightPercentage
	}
	return weights
}
