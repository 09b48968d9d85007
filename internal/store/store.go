package store

import (
	"context"
	"time"

	"github.com/yungbote/veriflow-backend/internal/types"
)

// Store is the document-store contract the pipeline handlers run against.
// The production implementation is Firestore; tests run against MemoryStore.
// All coordination between concurrently delivered events happens through
// these operations, so the ones that must be atomic say so explicitly.
type Store interface {
	// GetUser returns errors.ErrNotFound when no document exists.
	GetUser(ctx context.Context, id string) (*types.User, error)

	// CreateUser fails with errors.ErrAlreadyExists when the document is
	// already present. That failure is the checkout handler's idempotency
	// guard against webhook redelivery.
	CreateUser(ctx context.Context, u *types.User) error

	// ListSignedUpUsers returns at most limit users whose activationStatus
	// is still signed_up.
	ListSignedUpUsers(ctx context.Context, limit int) ([]*types.User, error)

	// AdvanceNudge sets the user's nudgeStatus to tier and appends the
	// activity-log entry in a single batched write.
	AdvanceNudge(ctx context.Context, userID string, tier types.NudgeStatus, entry types.ActivityEntry) error

	// MarkContractError merges status=error plus the message onto the
	// contract document. User state is deliberately untouched.
	MarkContractError(ctx context.Context, path types.ContractPath, msg string) error

	// CommitReportReady atomically marks the contract report_ready and the
	// user activated (activationStatus=report_ready, firstReportReadyAt=at).
	// Partial application is not allowed: either both documents change or
	// neither does.
	CommitReportReady(ctx context.Context, path types.ContractPath, at time.Time) error
}
