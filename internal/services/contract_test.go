package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/store"
	"github.com/yungbote/veriflow-backend/internal/types"
)

const contractResource = "projects/p/databases/(default)/documents/users/user_1/contracts/contract_1"

func newContractForTest(st *store.MemoryStore, ag ContractAgent, sms SMSSender, objects ObjectChecker, now time.Time) *contractService {
	svc := NewContractService(logger.NewNop(), st, ag, sms, objects).(*contractService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestContractMalformedResourceDropped(t *testing.T) {
	st := store.NewMemoryStore()
	ag := &fakeAgent{}
	svc := newContractForTest(st, ag, nil, nil, time.Now())

	svc.HandleCreated(context.Background(), ContractEvent{
		Resource: "users/only_a_user",
		GCSPath:  "gs://bucket/contract.pdf",
	})

	if ag.callCount() != 0 {
		t.Fatal("agent must not be called for an unparseable resource")
	}
}

func TestContractMissingGCSPath(t *testing.T) {
	st := store.NewMemoryStore()
	ag := &fakeAgent{}
	svc := newContractForTest(st, ag, nil, nil, time.Now())

	svc.HandleCreated(context.Background(), ContractEvent{Resource: contractResource})

	c := st.ContractByID("user_1", "contract_1")
	if c == nil {
		t.Fatal("expected contract error status to be written")
	}
	if c.Status != types.ContractError {
		t.Fatalf("status=%q, want error", c.Status)
	}
	if c.Error != "Missing gcsPath" {
		t.Fatalf("error=%q, want %q", c.Error, "Missing gcsPath")
	}
	if ag.callCount() != 0 {
		t.Fatal("agent must not be called when gcsPath is missing")
	}
}

func TestContractAgentFailure(t *testing.T) {
	now := time.Now()
	st := store.NewMemoryStore()
	st.SeedUser(&types.User{ID: "user_1", ActivationStatus: types.ActivationSignedUp})
	ag := &fakeAgent{err: errors.New("contract agent returned status 500: boom")}
	svc := newContractForTest(st, ag, nil, nil, now)

	svc.HandleCreated(context.Background(), ContractEvent{
		Resource: contractResource,
		GCSPath:  "gs://bucket/contract.pdf",
	})

	c := st.ContractByID("user_1", "contract_1")
	if c == nil || c.Status != types.ContractError {
		t.Fatalf("contract=%+v, want error status", c)
	}
	if c.Error == "" {
		t.Fatal("expected failure message on contract")
	}

	// User state must be untouched on processing failure.
	u := st.UserByID("user_1")
	if u.ActivationStatus != types.ActivationSignedUp {
		t.Fatalf("activationStatus=%q, want signed_up", u.ActivationStatus)
	}
	if u.FirstReportReadyAt != nil {
		t.Fatal("firstReportReadyAt must not be set on failure")
	}
}

func TestContractSuccessCommitsBothDocuments(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	st := store.NewMemoryStore()
	st.SeedUser(&types.User{
		ID:               "user_1",
		ActivationStatus: types.ActivationSignedUp,
		PhoneNumber:      "+15550001111",
	})
	ag := &fakeAgent{}
	sms := &fakeSMS{}
	svc := newContractForTest(st, ag, sms, nil, now)

	svc.HandleCreated(context.Background(), ContractEvent{
		Resource: contractResource,
		GCSPath:  "gs://bucket/contract.pdf",
	})

	if ag.callCount() != 1 {
		t.Fatalf("agent calls=%d, want 1", ag.callCount())
	}
	got := ag.calls[0]
	if got.UserID != "user_1" || got.ContractID != "contract_1" || got.GCSPath != "gs://bucket/contract.pdf" {
		t.Fatalf("agent request=%+v", got)
	}

	c := st.ContractByID("user_1", "contract_1")
	if c == nil || c.Status != types.ContractReportReady {
		t.Fatalf("contract=%+v, want report_ready", c)
	}
	u := st.UserByID("user_1")
	if u.ActivationStatus != types.ActivationReportReady {
		t.Fatalf("activationStatus=%q, want report_ready", u.ActivationStatus)
	}
	if u.FirstReportReadyAt == nil || !u.FirstReportReadyAt.Equal(now) {
		t.Fatalf("firstReportReadyAt=%v, want %v", u.FirstReportReadyAt, now)
	}

	sent := sms.sentMessages()
	if len(sent) != 1 || sent[0].Body != "Your Verified Report is ready." {
		t.Fatalf("sms=%+v, want one report-ready message", sent)
	}
}

func TestContractCommitFailureLeavesNeitherUpdated(t *testing.T) {
	now := time.Now()
	st := store.NewMemoryStore()
	st.SeedUser(&types.User{
		ID:               "user_1",
		ActivationStatus: types.ActivationSignedUp,
		PhoneNumber:      "+15550001111",
	})
	st.FailWith("CommitReportReady", errors.New("batch commit failed"))
	ag := &fakeAgent{}
	sms := &fakeSMS{}
	svc := newContractForTest(st, ag, sms, nil, now)

	svc.HandleCreated(context.Background(), ContractEvent{
		Resource: contractResource,
		GCSPath:  "gs://bucket/contract.pdf",
	})

	// Batch is all-or-nothing: no report_ready on either document.
	u := st.UserByID("user_1")
	if u.ActivationStatus != types.ActivationSignedUp || u.FirstReportReadyAt != nil {
		t.Fatalf("user partially updated after failed batch: %+v", u)
	}
	c := st.ContractByID("user_1", "contract_1")
	if c != nil && c.Status == types.ContractReportReady {
		t.Fatal("contract marked report_ready after failed batch")
	}
	if len(sms.sentMessages()) != 0 {
		t.Fatal("no SMS expected after failed commit")
	}
}

func TestContractSMSFailureDoesNotRollBack(t *testing.T) {
	now := time.Now()
	st := store.NewMemoryStore()
	st.SeedUser(&types.User{
		ID:               "user_1",
		ActivationStatus: types.ActivationSignedUp,
		PhoneNumber:      "+15550001111",
	})
	ag := &fakeAgent{}
	sms := &fakeSMS{err: errors.New("twilio down")}
	svc := newContractForTest(st, ag, sms, nil, now)

	svc.HandleCreated(context.Background(), ContractEvent{
		Resource: contractResource,
		GCSPath:  "gs://bucket/contract.pdf",
	})

	c := st.ContractByID("user_1", "contract_1")
	if c == nil || c.Status != types.ContractReportReady {
		t.Fatalf("contract=%+v, want report_ready despite SMS failure", c)
	}
	if got := st.UserByID("user_1").ActivationStatus; got != types.ActivationReportReady {
		t.Fatalf("activationStatus=%q, want report_ready", got)
	}
}

func TestContractSourceObjectCheck(t *testing.T) {
	t.Run("missing_object_fails_fast", func(t *testing.T) {
		st := store.NewMemoryStore()
		ag := &fakeAgent{}
		svc := newContractForTest(st, ag, nil, &fakeObjects{exists: false}, time.Now())

		svc.HandleCreated(context.Background(), ContractEvent{
			Resource: contractResource,
			GCSPath:  "gs://bucket/missing.pdf",
		})

		if ag.callCount() != 0 {
			t.Fatal("agent must not run when the source object is missing")
		}
		c := st.ContractByID("user_1", "contract_1")
		if c == nil || c.Status != types.ContractError {
			t.Fatalf("contract=%+v, want error status", c)
		}
	})

	t.Run("inconclusive_check_does_not_block", func(t *testing.T) {
		st := store.NewMemoryStore()
		st.SeedUser(&types.User{ID: "user_1", ActivationStatus: types.ActivationSignedUp})
		ag := &fakeAgent{}
		svc := newContractForTest(st, ag, nil, &fakeObjects{err: errors.New("storage timeout")}, time.Now())

		svc.HandleCreated(context.Background(), ContractEvent{
			Resource: contractResource,
			GCSPath:  "gs://bucket/contract.pdf",
		})

		if ag.callCount() != 1 {
			t.Fatal("agent should still run when the existence check errors")
		}
	})
}
