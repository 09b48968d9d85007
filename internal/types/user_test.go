package types

import (
	"testing"
	"time"
)

func TestNudgeStatusCanAdvanceTo(t *testing.T) {
	cases := []struct {
		name string
		from NudgeStatus
		to   NudgeStatus
		want bool
	}{
		{name: "none_to_a", from: NudgeNone, to: NudgeTierA, want: true},
		{name: "none_to_b_skip_ahead", from: NudgeNone, to: NudgeTierB, want: true},
		{name: "a_to_b", from: NudgeTierA, to: NudgeTierB, want: true},
		{name: "a_to_a_no_resend", from: NudgeTierA, to: NudgeTierA, want: false},
		{name: "b_to_a_no_regress", from: NudgeTierB, to: NudgeTierA, want: false},
		{name: "b_to_b_terminal", from: NudgeTierB, to: NudgeTierB, want: false},
		{name: "a_to_none_no_regress", from: NudgeTierA, to: NudgeNone, want: false},
		{name: "none_to_garbage", from: NudgeNone, to: NudgeStatus("nudge_C"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanAdvanceTo(tc.to); got != tc.want {
				t.Fatalf("CanAdvanceTo(%q -> %q)=%v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestStatusValidity(t *testing.T) {
	for _, s := range []ActivationStatus{ActivationSignedUp, ActivationReportReady, ActivationError} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if ActivationStatus("activated").Valid() {
		t.Fatal("unknown activation status should be invalid")
	}
	for _, s := range []NudgeStatus{NudgeNone, NudgeTierA, NudgeTierB} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if NudgeStatus("").Valid() {
		t.Fatal("empty nudge status should be invalid")
	}
}

func TestNewUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	u, err := NewUser(" cus_123 ", " a@b.com ", now)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.ID != "cus_123" || u.Email != "a@b.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.ActivationStatus != ActivationSignedUp || u.NudgeStatus != NudgeNone {
		t.Fatalf("fresh user has wrong lifecycle fields: %+v", u)
	}
	if !u.SignupDate.Equal(now) {
		t.Fatalf("signupDate=%v, want %v", u.SignupDate, now)
	}

	if _, err := NewUser("  ", "a@b.com", now); err == nil {
		t.Fatal("expected error for blank id")
	}
}
