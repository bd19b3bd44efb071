// Package domain contains entities without logic, just meta-data.
package domain

const MaxUsernameLen = 36

// UserID is the participant's display name; it is the sole membership key.
type UserID string

type Role int

const (
	RoleRegular Role = iota
	RoleManager
)

func (r Role) String() string {
	if r == RoleManager {
		return "manager"
	}
	return "regular"
}

// Admission is a participant's place in the join handshake.
type Admission int

const (
	AdmissionPending Admission = iota
	AdmissionActive
	AdmissionRejected
	AdmissionRemoved
)

func (a Admission) String() string {
	switch a {
	case AdmissionPending:
		return "pending"
	case AdmissionActive:
		return "active"
	case AdmissionRejected:
		return "rejected"
	default:
		return "removed"
	}
}

// ValidateUserID keeps raw string checks out of adapters.
func ValidateUserID(id UserID) error {
	if len(id) == 0 {
		return ErrUsernameEmpty
	}
	if len(id) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
