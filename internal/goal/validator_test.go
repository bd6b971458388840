package goal_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mwhitney/accountability-game/internal/goal"
	"github.com/stretchr/testify/assert"
)

func completeSnapshot() *goal.Snapshot {
	gameID := uuid.New()
	userID := uuid.New()

	return &goal.Snapshot{
		Vision:    &goal.Vision{GameID: gameID, UserID: userID, Content: "a clear vision"},
		Why:       &goal.Why{GameID: gameID, UserID: userID, Content: "a strong why"},
		Objective: &goal.Objective{GameID: gameID, UserID: userID, Content: "one objective"},
		KeyResults: []goal.KeyResult{
			{Description: "kr1", WeightPercentage: 40},
			{Description: "kr2", WeightPercentage: 40},
			{Description: "kr3", WeightPercentage: 20},
		},
		Projects: []goal.Project{
			{Description: "p1", WeightPercentage: 50},
			{Description: "p2", WeightPercentage: 30},
			{Description: "p3", WeightPercentage: 20},
		},
		BeliefItems: []goal.BeliefItem{
			{ItemType: goal.BeliefItemTypeLimiting, Category: goal.BeliefCategoryBelief, Description: "l", Rating: 3},
			{ItemType: goal.BeliefItemTypeEmpowering, Category: goal.BeliefCategoryHabit, Description: "e", Rating: 4},
		},
		Commitments: []goal.Commitment{
			{WeekNumber: 1, Description: "ship the first draft"},
		},
	}
}

func TestValidateSetupComplete(t *testing.T) {
	violations := goal.ValidateSetup("Q3 Game", completeSnapshot())
	assert.Empty(t, violations)
}

func TestValidateSetupGameName(t *testing.T) {
	violations := goal.ValidateSetup("   ", completeSnapshot())
	assert.Contains(t, violations, "game name must not be empty")
}

func TestValidateSetupStatements(t *testing.T) {
	snap := completeSnapshot()
	snap.Vision.Content = "  "
	snap.Why = nil
	snap.Objective.Content = ""

	violations := goal.ValidateSetup("Q3 Game", snap)
	assert.Equal(t, []string{
		"vision must not be empty",
		"why must not be empty",
		"objective must not be empty",
	}, violations)
}

func TestValidateSetupWeightSum(t *testing.T) {
	snap := completeSnapshot()
	snap.KeyResults = []goal.KeyResult{
		{Description: "kr1", WeightPercentage: 40},
		{Description: "kr2", WeightPercentage: 40},
		{Description: "kr3", WeightPercentage: 19},
	}

	violations := goal.ValidateSetup("Q3 Game", snap)
	assert.Contains(t, violations, "key result weights must sum to 100 (currently 99)")

	// Adding a fourth key result weighted 1 clears it.
	snap.KeyResults = append(snap.KeyResults, goal.KeyResult{Description: "kr4", WeightPercentage: 1})
	violations = goal.ValidateSetup("Q3 Game", snap)
	assert.Empty(t, violations)
}

func TestValidateSetupWeightRules(t *testing.T) {
	snap := completeSnapshot()
	snap.Projects = []goal.Project{
		{Description: "p1", WeightPercentage: 100},
		{Description: "p2", WeightPercentage: 0},
	}

	violations := goal.ValidateSetup("Q3 Game", snap)
	assert.Contains(t, violations, "at least 3 projects are required (currently 2)")
	assert.Contains(t, violations, "every project must have a weight greater than 0")
	// Sum is exactly 100, so no sum violation alongside the other two.
	assert.Len(t, violations, 2)
}

func TestValidateSetupBeliefItems(t *testing.T) {
	snap := completeSnapshot()
	snap.BeliefItems = []goal.BeliefItem{
		{ItemType: goal.BeliefItemTypeLimiting, Description: "l1", Rating: 2},
		{ItemType: goal.BeliefItemTypeLimiting, Description: "l2", Rating: 2},
		{ItemType: goal.BeliefItemTypeLimiting, Description: "l3", Rating: 2},
		{ItemType: goal.BeliefItemTypeLimiting, Description: "l4", Rating: 2},
		{ItemType: goal.BeliefItemTypeLimiting, Description: "l5", Rating: 2},
	}

	violations := goal.ValidateSetup("Q3 Game", snap)
	assert.Equal(t, []string{"at least 1 empowering belief item is required"}, violations)
}

func TestValidateSetupWeekOneCommitment(t *testing.T) {
	snap := completeSnapshot()
	snap.Commitments = []goal.Commitment{
		{WeekNumber: 2, Description: "too late"},
		{WeekNumber: 1, Description: "   "},
	}

	violations := goal.ValidateSetup("Q3 Game", snap)
	assert.Equal(t, []string{"the week 1 commitment must be filled in"}, violations)
}

func TestValidateSetupCollectsEverything(t *testing.T) {
	violations := goal.ValidateSetup("", &goal.Snapshot{})
	// Name, three statements, 2 per weighted collection (count + sum),
	// two belief rules, week-1 commitment.
	assert.Len(t, violations, 11)
}
