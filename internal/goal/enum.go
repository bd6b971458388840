package goal

type BeliefItemType string

const (
	BeliefItemTypeLimiting   BeliefItemType = "LIMITING"
	BeliefItemTypeEmpowering BeliefItemType = "EMPOWERING"
)

func (t BeliefItemType) IsValid() bool {
	return t == BeliefItemTypeLimiting || t == BeliefItemTypeEmpowering
}

type BeliefCategory string

const (
	BeliefCategoryBelief         BeliefCategory = "BELIEF"
	BeliefCategoryValue          BeliefCategory = "VALUE"
	BeliefCategoryHabit          BeliefCategory = "HABIT"
	BeliefCategoryMotivator      BeliefCategory = "MOTIVATOR"
	BeliefCategoryStrength       BeliefCategory = "STRENGTH"
	BeliefCategoryAccountability BeliefCategory = "ACCOUNTABILITY"
)

var AllBeliefCategories = []BeliefCategory{
	BeliefCategoryBelief,
	BeliefCategoryValue,
	BeliefCategoryHabit,
	BeliefCategoryMotivator,
	BeliefCategoryStrength,
	BeliefCategoryAccountability,
}

func (c BeliefCategory) IsValid() bool {
	for _, v := range AllBeliefCategories {
		if c == v {
			return true
		}
	}
	return false
}
