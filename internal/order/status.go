package order

// Status is the shared order status for both order kinds.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Kind distinguishes the two order record kinds sharing the state machine.
type Kind string

const (
	KindCurrency Kind = "currency"
	KindPoint    Kind = "point"
)

// Source tags the surface an order entered through.
type Source string

const (
	SourceMobile Source = "mobile"
	SourceKiosk  Source = "kiosk"
	SourceAdmin  Source = "admin"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReceived, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an order may move from one status to
// another. Forward steps on the happy path are all skippable. Cancellation
// is reachable from every non-terminal state and, as the one reversal edge,
// from completed: cancelling a completed order triggers the best-effort
// earned-point deduction. Cancelled is final. Re-applying the current
// status is handled as a no-op by the engine before this check.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	if from == StatusCompleted {
		return false
	}
	return rank(to) > rank(from)
}

func rank(s Status) int {
	switch s {
	case StatusPending:
		return 0
	case StatusReceived:
		return 1
	case StatusPreparing:
		return 2
	case StatusReady:
		return 3
	case StatusCompleted:
		return 4
	}
	return 5
}
