package enums

// DeadLetterStatus marks whether a dead-lettered webhook event still needs a
// replay.
type DeadLetterStatus string

const (
	DeadLetterStatusPending  DeadLetterStatus = "pending"
	DeadLetterStatusResolved DeadLetterStatus = "resolved"
)
