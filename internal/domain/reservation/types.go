package reservation

type Status string

const (
	StatusPending   Status = "pending"
	StatusHold      Status = "hold"
	StatusConfirmed Status = "confirmed"
	StatusCheckedIn Status = "checked_in"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusHold, StatusConfirmed, StatusCheckedIn, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Blocks reports whether a reservation in this state occupies inventory and
// participates in time-range conflict checks.
func (s Status) Blocks() bool {
	switch s {
	case StatusHold, StatusConfirmed, StatusCheckedIn:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
