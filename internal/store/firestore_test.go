package store

import (
	"testing"
	"time"
)

func TestUserFromDoc(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("native_timestamp", func(t *testing.T) {
		u, err := userFromDoc("cus_1", map[string]any{
			"activationStatus": "signed_up",
			"signupDate":       ts,
			"email":            "a@b.com",
			"phoneNumber":      "+15550001111",
			"nudgeStatus":      "nudge_A",
		})
		if err != nil {
			t.Fatalf("userFromDoc: %v", err)
		}
		if u.ID != "cus_1" || !u.SignupDate.Equal(ts) {
			t.Fatalf("unexpected user: %+v", u)
		}
		if string(u.NudgeStatus) != "nudge_A" {
			t.Fatalf("nudgeStatus=%q", u.NudgeStatus)
		}
	})

	t.Run("iso_string_timestamp", func(t *testing.T) {
		u, err := userFromDoc("cus_1", map[string]any{
			"activationStatus": "signed_up",
			"signupDate":       "2025-06-01T12:00:00Z",
		})
		if err != nil {
			t.Fatalf("userFromDoc: %v", err)
		}
		if !u.SignupDate.Equal(ts) {
			t.Fatalf("signupDate=%v, want %v", u.SignupDate, ts)
		}
	})

	t.Run("missing_nudge_status_defaults_to_none", func(t *testing.T) {
		u, err := userFromDoc("cus_1", map[string]any{
			"activationStatus": "signed_up",
			"signupDate":       ts,
		})
		if err != nil {
			t.Fatalf("userFromDoc: %v", err)
		}
		if string(u.NudgeStatus) != "none" {
			t.Fatalf("nudgeStatus=%q, want none", u.NudgeStatus)
		}
	})

	t.Run("bad_timestamp_rejected", func(t *testing.T) {
		if _, err := userFromDoc("cus_1", map[string]any{"signupDate": "not a date"}); err == nil {
			t.Fatal("expected decode error")
		}
	})
}
