package store

import (
	"context"
	"errors"
	"time"

	"truthcore-hq/atlas/pkg/truth"
)

// ErrNotFound is returned by point reads when no row matches. Callers
// translate it into the appropriate typed failure; the store itself has no
// opinion about what a missing row means.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicateKey is returned by inserts that violate a uniqueness
// constraint (entity id, or a key unique within its parent).
var ErrDuplicateKey = errors.New("store: duplicate key")

// Tx is a transactional view of the store. Reads inside one Tx observe a
// single consistent snapshot; writes become visible atomically when the
// enclosing WriteTx commits.
type Tx interface {
	// Vertical reads.
	VerticalByKey(key string) (*truth.Vertical, error)
	Vertical(id string) (*truth.Vertical, error)

	// SubVertical reads.
	SubVertical(id string) (*truth.SubVertical, error)
	SubVerticalByKey(verticalID, key string) (*truth.SubVertical, error)
	SubVerticals() ([]*truth.SubVertical, error)

	// MVT version reads.
	MVTVersion(id string) (*truth.MVTVersion, error)
	MVTVersions(subVerticalID string) ([]*truth.MVTVersion, error)

	// Persona and policy reads.
	Personas(subVerticalID string) ([]*truth.Persona, error)
	PersonaPolicy(id string) (*truth.PersonaPolicy, error)
	PersonaPolicies(personaID string) ([]*truth.PersonaPolicy, error)

	// Policy-text reads.
	PolicyTextVersion(id string) (*truth.PolicyTextVersion, error)
	PolicyTextVersions(subVerticalID string) ([]*truth.PolicyTextVersion, error)

	// Inserts. Each fails with ErrDuplicateKey on id or unique-key
	// collision.
	InsertVertical(v *truth.Vertical) error
	InsertSubVertical(sv *truth.SubVertical) error
	InsertMVTVersion(v *truth.MVTVersion) error
	InsertPersona(p *truth.Persona) error
	InsertPersonaPolicy(p *truth.PersonaPolicy) error
	InsertPolicyTextVersion(v *truth.PolicyTextVersion) error

	// Targeted updates. MVT version bodies are immutable, so the only
	// mutable MVT column is status; the same discipline applies to the
	// other lifecycle fields.
	SetMVTStatus(id string, status truth.MVTStatus) error
	SetActiveMVTPointer(subVerticalID, versionID string) error
	SetSubVerticalICP(subVerticalID, buyerRole, decisionOwner string) error
	SetPolicySource(subVerticalID, text string, format truth.SourceFormat) error
	SetPersonaPolicyStatus(id string, status truth.PolicyStatus, activatedAt *time.Time) error
	SetPolicyTextStatus(id string, status truth.TextStatus) error
	MarkPolicyTextApproved(v *truth.PolicyTextVersion) error
}

// Store is the durable keyed storage capability the engine runs against.
type Store interface {
	// ReadTx runs fn against a read-only snapshot.
	ReadTx(ctx context.Context, fn func(Tx) error) error

	// WriteTx runs fn in a transaction that commits only if fn returns
	// nil; any error rolls every write back.
	WriteTx(ctx context.Context, fn func(Tx) error) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
