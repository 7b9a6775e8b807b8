package valueobjects

import "fmt"

type MembershipStatus string

const (
	StatusPending   MembershipStatus = "pending"
	StatusTrialing  MembershipStatus = "trialing"
	StatusActive    MembershipStatus = "active"
	StatusOnHold    MembershipStatus = "on-hold"
	StatusExpired   MembershipStatus = "expired"
	StatusCancelled MembershipStatus = "cancelled"
)

var ValidStatuses = map[MembershipStatus]bool{
	StatusPending:   true,
	StatusTrialing:  true,
	StatusActive:    true,
	StatusOnHold:    true,
	StatusExpired:   true,
	StatusCancelled: true,
}

var statusTransitions = map[MembershipStatus][]MembershipStatus{
	StatusPending:   {StatusTrialing, StatusActive, StatusOnHold, StatusCancelled, StatusExpired},
	StatusTrialing:  {StatusActive, StatusOnHold, StatusCancelled, StatusExpired},
	StatusActive:    {StatusOnHold, StatusExpired, StatusCancelled},
	StatusOnHold:    {StatusActive, StatusExpired, StatusCancelled, StatusTrialing},
	StatusExpired:   {StatusActive, StatusOnHold, StatusCancelled},
	StatusCancelled: {StatusActive, StatusPending},
}

func ParseMembershipStatus(s string) (MembershipStatus, error) {
	status := MembershipStatus(s)
	if !ValidStatuses[status] {
		return "", fmt.Errorf("invalid membership status: %s", s)
	}
	return status, nil
}

func (s MembershipStatus) String() string {
	return string(s)
}

func (s MembershipStatus) IsValid() bool {
	return ValidStatuses[s]
}

// IsActive reports whether the customer currently has access.
func (s MembershipStatus) IsActive() bool {
	return s == StatusActive || s == StatusTrialing
}

func (s MembershipStatus) CanTransitionTo(target MembershipStatus) bool {
	if s == target {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Label is the human readable status name.
func (s MembershipStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusTrialing:
		return "Trialing"
	case StatusActive:
		return "Active"
	case StatusOnHold:
		return "On Hold"
	case StatusExpired:
		return "Expired"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}
