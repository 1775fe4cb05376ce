package policy

import "errors"

// Reason is a stable machine-readable rejection code.
type Reason string

const (
	ReasonTooEarlyInWeek       Reason = "TOO_EARLY_IN_WEEK"
	ReasonSlotInPast           Reason = "SLOT_IN_PAST"
	ReasonCooldownActive       Reason = "COOLDOWN_ACTIVE"
	ReasonSlotUnavailable      Reason = "SLOT_UNAVAILABLE"
	ReasonAlreadyBooked        Reason = "ALREADY_BOOKED"
	ReasonOutsideAllowedWindow Reason = "OUTSIDE_ALLOWED_WINDOW"

	// Raised by the coordinator rather than Evaluate.
	ReasonBookingNotActive     Reason = "BOOKING_NOT_ACTIVE"
	ReasonCancelTooLate        Reason = "CANCEL_TOO_LATE"
	ReasonSlotHasActiveBooking Reason = "SLOT_HAS_ACTIVE_BOOKING"
)

// Reasons lists every code, in rule order first.
var Reasons = []Reason{
	ReasonTooEarlyInWeek,
	ReasonSlotInPast,
	ReasonCooldownActive,
	ReasonSlotUnavailable,
	ReasonAlreadyBooked,
	ReasonOutsideAllowedWindow,
	ReasonBookingNotActive,
	ReasonCancelTooLate,
	ReasonSlotHasActiveBooking,
}

type Rejection struct {
	Reason Reason
}

func Reject(reason Reason) *Rejection {
	return &Rejection{Reason: reason}
}

func (r *Rejection) Error() string {
	return "rejected: " + string(r.Reason)
}

// ReasonOf extracts the rejection code from err.
func ReasonOf(err error) (Reason, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}
