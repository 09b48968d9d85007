package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/veriflow-backend/internal/clients/gcp"
	pkgerrors "github.com/yungbote/veriflow-backend/internal/pkg/errors"
	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/types"
)

const (
	usersCollection       = "users"
	contractsCollection   = "contracts"
	activityLogCollection = "activity_log"
)

type firestoreStore struct {
	log    *logger.Logger
	client *firestore.Client
}

// NewFirestoreStore connects to the given project using the credential
// options resolved from the environment.
func NewFirestoreStore(ctx context.Context, log *logger.Logger, projectID string) (Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("missing firestore project id")
	}
	client, err := firestore.NewClient(ctx, projectID, gcp.ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &firestoreStore{
		log:    log.With("component", "FirestoreStore"),
		client: client,
	}, nil
}

func (s *firestoreStore) userRef(id string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(id)
}

func (s *firestoreStore) contractRef(p types.ContractPath) *firestore.DocumentRef {
	return s.userRef(p.UserID).Collection(contractsCollection).Doc(p.ContractID)
}

func (s *firestoreStore) GetUser(ctx context.Context, id string) (*types.User, error) {
	snap, err := s.userRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user %s: %w", id, pkgerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return userFromDoc(id, snap.Data())
}

func (s *firestoreStore) CreateUser(ctx context.Context, u *types.User) error {
	if _, err := s.userRef(u.ID).Create(ctx, u); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user %s: %w", u.ID, pkgerrors.ErrAlreadyExists)
		}
		return fmt.Errorf("create user %s: %w", u.ID, err)
	}
	return nil
}

func (s *firestoreStore) ListSignedUpUsers(ctx context.Context, limit int) ([]*types.User, error) {
	iter := s.client.Collection(usersCollection).
		Where("activationStatus", "==", string(types.ActivationSignedUp)).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var users []*types.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list signed_up users: %w", err)
		}
		u, err := userFromDoc(snap.Ref.ID, snap.Data())
		if err != nil {
			// A single undecodable document should not sink the whole scan.
			s.log.Warn("Skipping undecodable user document", "user_id", snap.Ref.ID, "error", err)
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *firestoreStore) AdvanceNudge(ctx context.Context, userID string, tier types.NudgeStatus, entry types.ActivityEntry) error {
	batch := s.client.Batch()
	batch.Set(s.userRef(userID), map[string]any{
		"nudgeStatus": string(tier),
	}, firestore.MergeAll)
	batch.Set(s.userRef(userID).Collection(activityLogCollection).Doc(entry.ID), entry)
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("advance nudge for user %s: %w", userID, err)
	}
	return nil
}

func (s *firestoreStore) MarkContractError(ctx context.Context, p types.ContractPath, msg string) error {
	_, err := s.contractRef(p).Set(ctx, map[string]any{
		"status": string(types.ContractError),
		"error":  msg,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("mark contract %s error: %w", p.ContractID, err)
	}
	return nil
}

func (s *firestoreStore) CommitReportReady(ctx context.Context, p types.ContractPath, at time.Time) error {
	batch := s.client.Batch()
	batch.Set(s.contractRef(p), map[string]any{
		"status": string(types.ContractReportReady),
	}, firestore.MergeAll)
	batch.Set(s.userRef(p.UserID), map[string]any{
		"activationStatus":   string(types.ActivationReportReady),
		"firstReportReadyAt": at,
	}, firestore.MergeAll)
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("commit report_ready for contract %s: %w", p.ContractID, err)
	}
	return nil
}

// userFromDoc decodes a raw user document. Decoded by hand rather than via
// DataTo because signupDate exists in two representations (store timestamp
// and ISO string) and both must keep working.
func userFromDoc(id string, data map[string]any) (*types.User, error) {
	u := &types.User{
		ID:          id,
		NudgeStatus: types.NudgeNone,
	}
	if v, ok := data["activationStatus"].(string); ok {
		u.ActivationStatus = types.ActivationStatus(v)
	}
	if v, ok := data["nudgeStatus"].(string); ok && v != "" {
		u.NudgeStatus = types.NudgeStatus(v)
	}
	if v, ok := data["email"].(string); ok {
		u.Email = v
	}
	if v, ok := data["phoneNumber"].(string); ok {
		u.PhoneNumber = v
	}
	if raw, ok := data["signupDate"]; ok {
		t, err := types.ParseFlexibleTime(raw)
		if err != nil {
			return nil, fmt.Errorf("user %s signupDate: %w", id, err)
		}
		u.SignupDate = t
	}
	if v, ok := data["firstReportReadyAt"].(time.Time); ok {
		u.FirstReportReadyAt = &v
	}
	return u, nil
}
