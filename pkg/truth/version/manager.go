package version

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"truthcore-hq/atlas/pkg/truth"
	"truthcore-hq/atlas/pkg/truth/compiler"
	"truthcore-hq/atlas/pkg/truth/store"
)

// Manager owns the version lifecycles. It is safe for concurrent use; all
// shared state lives in the store and every mutation runs in one WriteTx.
type Manager struct {
	store    store.Store
	compiler *compiler.Compiler
	logger   *slog.Logger

	// now and newID are injectable for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewManager creates a version manager.
func NewManager(st store.Store, comp *compiler.Compiler, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if comp == nil {
		comp = compiler.New(nil, logger)
	}
	return &Manager{
		store:    st,
		compiler: comp,
		logger:   logger.With("component", "version-manager"),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// WithClock replaces the manager's clock. Intended for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// WithIDFunc replaces the manager's id generator. Intended for tests.
func (m *Manager) WithIDFunc(newID func() string) *Manager {
	m.newID = newID
	return m
}

// PolicyHash computes the content-derived digest recorded on every
// policy-text version: the hex sha256 of the raw source.
func PolicyHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// audit writes one audit entry for a completed write attempt. The entry is
// emitted whether or not the write succeeded, so the trail covers rejected
// operations too.
func (m *Manager) audit(actor, action, target string, payload any, err error) {
	attrs := []any{
		"actor", actor,
		"action", action,
		"target", target,
		"payload", auditPayload(payload),
		"success", err == nil,
	}
	if err != nil {
		attrs = append(attrs, "reason", err.Error())
		m.logger.Warn("write rejected", attrs...)
		return
	}
	m.logger.Info("write applied", attrs...)
}

func auditPayload(payload any) string {
	if payload == nil {
		return ""
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "<unserializable>"
	}
	return string(data)
}

// mapStoreErr converts store sentinel errors into typed failures; anything
// else passes through to surface as INTERNAL at the boundary.
func mapStoreErr(err error, what string) error {
	switch err {
	case store.ErrNotFound:
		return truth.NewFailure(truth.CodeNotFound, "%s not found", what)
	case store.ErrDuplicateKey:
		return truth.NewFailure(truth.CodeDuplicateKey, "%s already exists", what)
	default:
		return err
	}
}
