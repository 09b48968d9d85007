package store

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/yungbote/veriflow-backend/internal/pkg/errors"
	"github.com/yungbote/veriflow-backend/internal/types"
)

func TestMemoryStoreCreateUserIdempotencyGuard(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	u, err := types.NewUser("cus_1", "a@b.com", time.Now())
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if err := st.CreateUser(ctx, u); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err = st.CreateUser(ctx, u)
	if !errors.Is(err, pkgerrors.ErrAlreadyExists) {
		t.Fatalf("second create err=%v, want ErrAlreadyExists", err)
	}
	if st.CreateCalls != 1 {
		t.Fatalf("CreateCalls=%d, want 1", st.CreateCalls)
	}
}

func TestMemoryStoreGetUserNotFound(t *testing.T) {
	st := NewMemoryStore()
	_, err := st.GetUser(context.Background(), "ghost")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestMemoryStoreListSignedUpUsersHonorsLimit(t *testing.T) {
	st := NewMemoryStore()
	for _, u := range []*types.User{
		{ID: "a", ActivationStatus: types.ActivationSignedUp},
		{ID: "b", ActivationStatus: types.ActivationSignedUp},
		{ID: "c", ActivationStatus: types.ActivationSignedUp},
		{ID: "d", ActivationStatus: types.ActivationReportReady},
	} {
		st.SeedUser(u)
	}

	users, err := st.ListSignedUpUsers(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListSignedUpUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len=%d, want 2", len(users))
	}
	for _, u := range users {
		if u.ActivationStatus != types.ActivationSignedUp {
			t.Fatalf("user %s has status %q", u.ID, u.ActivationStatus)
		}
	}
}

func TestMemoryStoreCommitReportReadyAtomicity(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	st.SeedUser(&types.User{ID: "u1", ActivationStatus: types.ActivationSignedUp})
	path := types.ContractPath{UserID: "u1", ContractID: "c1"}
	at := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	st.FailWith("CommitReportReady", errors.New("batch failed"))
	if err := st.CommitReportReady(ctx, path, at); err == nil {
		t.Fatal("expected injected failure")
	}
	if u := st.UserByID("u1"); u.ActivationStatus != types.ActivationSignedUp || u.FirstReportReadyAt != nil {
		t.Fatalf("user changed by failed batch: %+v", u)
	}
	if c := st.ContractByID("u1", "c1"); c != nil {
		t.Fatalf("contract changed by failed batch: %+v", c)
	}

	st.FailWith("CommitReportReady", nil)
	if err := st.CommitReportReady(ctx, path, at); err != nil {
		t.Fatalf("CommitReportReady: %v", err)
	}
	u := st.UserByID("u1")
	if u.ActivationStatus != types.ActivationReportReady || u.FirstReportReadyAt == nil {
		t.Fatalf("user not updated: %+v", u)
	}
	if c := st.ContractByID("u1", "c1"); c == nil || c.Status != types.ContractReportReady {
		t.Fatalf("contract not updated: %+v", c)
	}
}

func TestMemoryStoreAdvanceNudgeWritesBoth(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	st.SeedUser(&types.User{ID: "u1", ActivationStatus: types.ActivationSignedUp, NudgeStatus: types.NudgeNone})

	entry := types.ActivityEntry{ID: "e1", Type: string(types.NudgeTierA), SentAt: time.Now(), Channel: "sms", Context: "hello"}
	if err := st.AdvanceNudge(ctx, "u1", types.NudgeTierA, entry); err != nil {
		t.Fatalf("AdvanceNudge: %v", err)
	}
	if got := st.UserByID("u1").NudgeStatus; got != types.NudgeTierA {
		t.Fatalf("nudgeStatus=%q, want nudge_A", got)
	}
	log := st.ActivityLog("u1")
	if len(log) != 1 || log[0].ID != "e1" {
		t.Fatalf("activity log=%+v", log)
	}
}
