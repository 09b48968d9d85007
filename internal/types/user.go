package types

import (
	"fmt"
	"strings"
	"time"
)

// ActivationStatus is the coarse lifecycle stage of a user.
type ActivationStatus string

const (
	ActivationSignedUp    ActivationStatus = "signed_up"
	ActivationReportReady ActivationStatus = "report_ready"
	ActivationError       ActivationStatus = "error"
)

func (s ActivationStatus) Valid() bool {
	switch s {
	case ActivationSignedUp, ActivationReportReady, ActivationError:
		return true
	}
	return false
}

// NudgeStatus is the highest reminder tier already sent to a user.
// It only ever moves forward: none -> nudge_A -> nudge_B.
type NudgeStatus string

const (
	NudgeNone  NudgeStatus = "none"
	NudgeTierA NudgeStatus = "nudge_A"
	NudgeTierB NudgeStatus = "nudge_B"
)

func (s NudgeStatus) Valid() bool {
	switch s {
	case NudgeNone, NudgeTierA, NudgeTierB:
		return true
	}
	return false
}

func (s NudgeStatus) rank() int {
	switch s {
	case NudgeTierA:
		return 1
	case NudgeTierB:
		return 2
	default:
		return 0
	}
}

// CanAdvanceTo reports whether moving from s to next is a strictly forward
// transition. A user at nudge_B is terminal for nudging purposes.
func (s NudgeStatus) CanAdvanceTo(next NudgeStatus) bool {
	if !next.Valid() || next == NudgeNone {
		return false
	}
	return next.rank() > s.rank()
}

// User is the document stored at users/{id}. The id is the payment
// provider's customer id, assigned at checkout.
type User struct {
	ID                 string           `firestore:"-" json:"id"`
	ActivationStatus   ActivationStatus `firestore:"activationStatus" json:"activationStatus"`
	SignupDate         time.Time        `firestore:"signupDate" json:"signupDate"`
	Email              string           `firestore:"email,omitempty" json:"email,omitempty"`
	PhoneNumber        string           `firestore:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	NudgeStatus        NudgeStatus      `firestore:"nudgeStatus" json:"nudgeStatus"`
	FirstReportReadyAt *time.Time       `firestore:"firstReportReadyAt,omitempty" json:"firstReportReadyAt,omitempty"`
}

// NewUser builds a freshly provisioned user as the checkout handler creates
// it. SignupDate is set once here and never rewritten.
func NewUser(id, email string, now time.Time) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("user id required")
	}
	return &User{
		ID:               id,
		ActivationStatus: ActivationSignedUp,
		SignupDate:       now.UTC(),
		Email:            strings.TrimSpace(email),
		NudgeStatus:      NudgeNone,
	}, nil
}
