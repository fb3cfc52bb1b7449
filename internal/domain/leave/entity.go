package leave

import (
	"time"
)

type Type string

const (
	TypePaid      Type = "paid"
	TypeUnpaid    Type = "unpaid"
	TypeSick      Type = "sick"
	TypeCasual    Type = "casual"
	TypeMaternity Type = "maternity"
	TypePaternity Type = "paternity"
)

var validTypes = []string{
	string(TypePaid),
	string(TypeUnpaid),
	string(TypeSick),
	string(TypeCasual),
	string(TypeMaternity),
	string(TypePaternity),
}

func (t Type) IsValid() bool {
	for _, v := range validTypes {
		if string(t) == v {
			return true
		}
	}
	return false
}

// IsPaid reports whether leave of this type keeps full pay.
func (t Type) IsPaid() bool {
	return t != TypeUnpaid
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var validStatuses = []string{
	string(StatusPending),
	string(StatusApproved),
	string(StatusRejected),
}

// LeaveRequest entity. Dates are inclusive calendar days at midnight UTC.
type LeaveRequest struct {
	ID         string
	EmployeeID string
	LeaveType  Type
	StartDate  time.Time
	EndDate    time.Time
	Reason     string

	// Status pending -> approved | rejected
	Status          Status
	ApprovedBy      *string // reviewer, set on approval and rejection
	ApprovedAt      *time.Time
	RejectionReason *string

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Dates lists every calendar day covered by the request.
func (l LeaveRequest) Dates() []time.Time {
	var dates []time.Time
	for d := l.StartDate; !d.After(l.EndDate); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Overlaps reports whether the request shares a day with [start, end].
func (l LeaveRequest) Overlaps(start, end time.Time) bool {
	return !l.StartDate.After(end) && !start.After(l.EndDate)
}

// Approve moves a pending request to approved.
func (l *LeaveRequest) Approve(approverID string, at time.Time) error {
	if l.Status != StatusPending {
		return ErrLeaveRequestAlreadyProcessed
	}
	if l.EmployeeID == approverID {
		return ErrSelfApproval
	}
	l.Status = StatusApproved
	l.ApprovedBy = &approverID
	l.ApprovedAt = &at
	return nil
}

// Reject moves a pending request to rejected.
func (l *LeaveRequest) Reject(approverID string, reason string, at time.Time) error {
	if l.Status != StatusPending {
		return ErrLeaveRequestAlreadyProcessed
	}
	if l.EmployeeID == approverID {
		return ErrSelfApproval
	}
	l.Status = StatusRejected
	l.ApprovedBy = &approverID
	l.ApprovedAt = &at
	l.RejectionReason = &reason
	return nil
}

// TransitionEvent is published after a request changes status.
type TransitionEvent struct {
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	LeaveType  Type      `json:"leave_type"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	ActorID    string    `json:"actor_id"`
	Reason     *string   `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Topic names the event stream, e.g. "leave.approved".
func (e TransitionEvent) Topic() string {
	return "leave." + string(e.To)
}
