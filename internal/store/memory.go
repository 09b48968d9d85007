package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/yungbote/veriflow-backend/internal/pkg/errors"
	"github.com/yungbote/veriflow-backend/internal/types"
)

// MemoryStore is an in-memory Store used by unit tests and local runs that
// have no Firestore project configured. Failures can be injected per
// operation to exercise error paths, and write calls are counted so tests
// can assert on idempotency.
type MemoryStore struct {
	mu        sync.Mutex
	users     map[string]*types.User
	contracts map[string]map[string]*types.Contract
	activity  map[string][]types.ActivityEntry
	failures  map[string]error

	CreateCalls int
	CommitCalls int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     map[string]*types.User{},
		contracts: map[string]map[string]*types.Contract{},
		activity:  map[string][]types.ActivityEntry{},
		failures:  map[string]error{},
	}
}

// FailWith makes the named operation ("CreateUser", "AdvanceNudge",
// "MarkContractError", "CommitReportReady", "ListSignedUpUsers") return err
// until cleared with a nil err.
func (m *MemoryStore) FailWith(op string, err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
	} else {
		m.failures[op] = err
	}
	return m
}

// SeedUser inserts a user directly, bypassing create semantics.
func (m *MemoryStore) SeedUser(u *types.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
}

// SeedContract inserts a contract directly.
func (m *MemoryStore) SeedContract(c *types.Contract) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.contracts[c.UserID] == nil {
		m.contracts[c.UserID] = map[string]*types.Contract{}
	}
	cp := *c
	m.contracts[c.UserID][c.ID] = &cp
}

// UserByID returns a copy of the stored user, or nil.
func (m *MemoryStore) UserByID(id string) *types.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// ContractByID returns a copy of the stored contract, or nil.
func (m *MemoryStore) ContractByID(userID, contractID string) *types.Contract {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[userID][contractID]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// ActivityLog returns the append-only log recorded for a user.
func (m *MemoryStore) ActivityLog(userID string) []types.ActivityEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.ActivityEntry, len(m.activity[userID]))
	copy(out, m.activity[userID])
	return out
}

func (m *MemoryStore) GetUser(ctx context.Context, id string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["GetUser"]; err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, pkgerrors.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["CreateUser"]; err != nil {
		return err
	}
	if _, exists := m.users[u.ID]; exists {
		return fmt.Errorf("user %s: %w", u.ID, pkgerrors.ErrAlreadyExists)
	}
	m.CreateCalls++
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryStore) ListSignedUpUsers(ctx context.Context, limit int) ([]*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["ListSignedUpUsers"]; err != nil {
		return nil, err
	}
	var out []*types.User
	for _, u := range m.users {
		if u.ActivationStatus != types.ActivationSignedUp {
			continue
		}
		if len(out) >= limit {
			break
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) AdvanceNudge(ctx context.Context, userID string, tier types.NudgeStatus, entry types.ActivityEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["AdvanceNudge"]; err != nil {
		return err
	}
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, pkgerrors.ErrNotFound)
	}
	u.NudgeStatus = tier
	m.activity[userID] = append(m.activity[userID], entry)
	return nil
}

func (m *MemoryStore) MarkContractError(ctx context.Context, p types.ContractPath, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["MarkContractError"]; err != nil {
		return err
	}
	c := m.contractLocked(p)
	c.Status = types.ContractError
	c.Error = msg
	return nil
}

func (m *MemoryStore) CommitReportReady(ctx context.Context, p types.ContractPath, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommitCalls++
	// Injected failure models a failed batch commit: all-or-nothing, so
	// neither the contract nor the user may change.
	if err := m.failures["CommitReportReady"]; err != nil {
		return err
	}
	c := m.contractLocked(p)
	c.Status = types.ContractReportReady
	if u, ok := m.users[p.UserID]; ok {
		u.ActivationStatus = types.ActivationReportReady
		t := at
		u.FirstReportReadyAt = &t
	}
	return nil
}

// contractLocked upserts the contract document the way a merge write would.
func (m *MemoryStore) contractLocked(p types.ContractPath) *types.Contract {
	if m.contracts[p.UserID] == nil {
		m.contracts[p.UserID] = map[string]*types.Contract{}
	}
	c, ok := m.contracts[p.UserID][p.ContractID]
	if !ok {
		c = &types.Contract{ID: p.ContractID, UserID: p.UserID}
		m.contracts[p.UserID][p.ContractID] = c
	}
	return c
}
