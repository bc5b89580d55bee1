package game

// TurnStatus represents what a game's turn slot is doing
type TurnStatus string

const (
	StatusIdle    TurnStatus = "IDLE"
	StatusPending TurnStatus = "PENDING"
	StatusPlaying TurnStatus = "PLAYING"
)

// Reasons a pending turn was given up, used for logging and metrics.
const (
	reasonManual  = "manual"
	reasonTimeout = "timeout"
)
