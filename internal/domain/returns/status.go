package returns

// Status represents the stage of a return request's workflow
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusPickupScheduled Status = "pickup_scheduled"
	StatusPickedUp        Status = "picked_up"
	StatusReceived        Status = "received"
	StatusRefunded        Status = "refunded"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusRejected,
		StatusPickupScheduled, StatusPickedUp, StatusReceived, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for statuses no transition leaves
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusRefunded
}

// IsActive returns true while the return still counts against the order's
// returnable quantities. A rejected return frees its quantities back up.
func (s Status) IsActive() bool {
	return s != StatusRejected
}

// CanTransitionTo checks if the status can transition to the target status.
// The workflow is strictly linear; rejection is only possible before
// approval.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPendingApproval:
		return target == StatusApproved || target == StatusRejected
	case StatusApproved:
		return target == StatusPickupScheduled
	case StatusPickupScheduled:
		return target == StatusPickedUp
	case StatusPickedUp:
		return target == StatusReceived
	case StatusReceived:
		return target == StatusRefunded
	case StatusRejected, StatusRefunded:
		return false // Terminal states
	}
	return false
}
