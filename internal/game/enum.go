package game

// GameStatus follows SETUP → ACTIVE → COMPLETED with no reverse
// transitions.
type GameStatus string

const (
	GameStatusSetup     GameStatus = "SETUP"
	GameStatusActive    GameStatus = "ACTIVE"
	GameStatusCompleted GameStatus = "COMPLETED"
)

var AllStatuses = []GameStatus{
	GameStatusSetup,
	GameStatusActive,
	GameStatusCompleted,
}

func (s GameStatus) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}
