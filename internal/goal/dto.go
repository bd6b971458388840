package goal

type StatementDTO struct {
	Content              string `json:"content"`
	CompletionPercentage int    `json:"completion_percentage"`
}

type WeightedItemDTO struct {
	Description          string `json:"description"`
	WeightPercentage     int    `json:"weight_percentage"`
	CompletionPercentage int    `json:"completion_percentage"`
	Notes                string `json:"notes"`
	SortOrder            int    `json:"sort_order"`
}

type BeliefItemDTO struct {
	ItemType    BeliefItemType `json:"item_type"`
	Category    BeliefCategory `json:"category"`
	Description string         `json:"description"`
	Rating      int            `json:"rating"`
	Notes       string         `json:"notes"`
	SortOrder   int            `json:"sort_order"`
}

func (dto BeliefItemDTO) validate() error {
	if !dto.ItemType.IsValid() {
		return ErrInvalidItemType
	}
	if !dto.Category.IsValid() {
		return ErrInvalidCategory
	}
	if dto.Rating < 1 || dto.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

type CommitmentDTO struct {
	Description          string `json:"description"`
	CompletionPercentage int    `json:"completion_percentage"`
	Notes                string `json:"notes"`
}

type ChecklistResponse struct {
	Ready      bool     `json:"ready"`
	Violations []string `json:"violations"`
}
