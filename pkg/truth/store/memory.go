package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"truthcore-hq/atlas/pkg/truth"
)

// Memory implements Store with in-memory maps. All data is lost when the
// process exits. Rows are treated as immutable values: every read returns
// a copy and every update replaces the whole row, so callers can never
// mutate stored state in place.
type Memory struct {
	mu sync.RWMutex

	verticals       map[string]*truth.Vertical
	subVerticals    map[string]*truth.SubVertical
	mvtVersions     map[string]*truth.MVTVersion
	personas        map[string]*truth.Persona
	personaPolicies map[string]*truth.PersonaPolicy
	policyTexts     map[string]*truth.PolicyTextVersion
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		verticals:       make(map[string]*truth.Vertical),
		subVerticals:    make(map[string]*truth.SubVertical),
		mvtVersions:     make(map[string]*truth.MVTVersion),
		personas:        make(map[string]*truth.Persona),
		personaPolicies: make(map[string]*truth.PersonaPolicy),
		policyTexts:     make(map[string]*truth.PolicyTextVersion),
	}
}

// ReadTx implements Store. The read lock is held for the duration of fn,
// giving it a consistent snapshot.
func (m *Memory) ReadTx(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memTx{store: m, writable: false})
}

// WriteTx implements Store. Writes go to a staged copy of every table and
// replace the live maps only when fn returns nil.
func (m *Memory) WriteTx(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		store:    m,
		writable: true,
		staged: &Memory{
			verticals:       copyMap(m.verticals),
			subVerticals:    copyMap(m.subVerticals),
			mvtVersions:     copyMap(m.mvtVersions),
			personas:        copyMap(m.personas),
			personaPolicies: copyMap(m.personaPolicies),
			policyTexts:     copyMap(m.policyTexts),
		},
	}

	if err := fn(tx); err != nil {
		return err
	}

	m.verticals = tx.staged.verticals
	m.subVerticals = tx.staged.subVerticals
	m.mvtVersions = tx.staged.mvtVersions
	m.personas = tx.staged.personas
	m.personaPolicies = tx.staged.personaPolicies
	m.policyTexts = tx.staged.policyTexts
	return nil
}

// Ping implements Store.
func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// memTx is the transactional view over a Memory store. Read-only
// transactions read the live maps; write transactions read and write the
// staged copies.
type memTx struct {
	store    *Memory
	writable bool
	staged   *Memory
}

func (t *memTx) view() *Memory {
	if t.writable {
		return t.staged
	}
	return t.store
}

func (t *memTx) VerticalByKey(key string) (*truth.Vertical, error) {
	for _, v := range t.view().verticals {
		if v.Key == key {
			clone := *v
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) Vertical(id string) (*truth.Vertical, error) {
	v, ok := t.view().verticals[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (t *memTx) SubVertical(id string) (*truth.SubVertical, error) {
	sv, ok := t.view().subVerticals[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *sv
	return &clone, nil
}

func (t *memTx) SubVerticalByKey(verticalID, key string) (*truth.SubVertical, error) {
	for _, sv := range t.view().subVerticals {
		if sv.VerticalID == verticalID && sv.Key == key {
			clone := *sv
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) SubVerticals() ([]*truth.SubVertical, error) {
	var out []*truth.SubVertical
	for _, sv := range t.view().subVerticals {
		clone := *sv
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) MVTVersion(id string) (*truth.MVTVersion, error) {
	v, ok := t.view().mvtVersions[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (t *memTx) MVTVersions(subVerticalID string) ([]*truth.MVTVersion, error) {
	var out []*truth.MVTVersion
	for _, v := range t.view().mvtVersions {
		if v.SubVerticalID == subVerticalID {
			clone := *v
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (t *memTx) Personas(subVerticalID string) ([]*truth.Persona, error) {
	var out []*truth.Persona
	for _, p := range t.view().personas {
		if p.SubVerticalID == subVerticalID {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) PersonaPolicy(id string) (*truth.PersonaPolicy, error) {
	p, ok := t.view().personaPolicies[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (t *memTx) PersonaPolicies(personaID string) ([]*truth.PersonaPolicy, error) {
	var out []*truth.PersonaPolicy
	for _, p := range t.view().personaPolicies {
		if p.PersonaID == personaID {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyVersion < out[j].PolicyVersion })
	return out, nil
}

func (t *memTx) PolicyTextVersion(id string) (*truth.PolicyTextVersion, error) {
	v, ok := t.view().policyTexts[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (t *memTx) PolicyTextVersions(subVerticalID string) ([]*truth.PolicyTextVersion, error) {
	var out []*truth.PolicyTextVersion
	for _, v := range t.view().policyTexts {
		if v.SubVerticalID == subVerticalID {
			clone := *v
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (t *memTx) InsertVertical(v *truth.Vertical) error {
	if !t.writable {
		return errReadOnly
	}
	if _, exists := t.staged.verticals[v.ID]; exists {
		return ErrDuplicateKey
	}
	for _, existing := range t.staged.verticals {
		if existing.Key == v.Key {
			return ErrDuplicateKey
		}
	}
	clone := *v
	t.staged.verticals[v.ID] = &clone
	return nil
}

func (t *memTx) InsertSubVertical(sv *truth.SubVertical) error {
	if !t.writable {
		return errReadOnly
	}
	if _, exists := t.staged.subVerticals[sv.ID]; exists {
		return ErrDuplicateKey
	}
	for _, existing := range t.staged.subVerticals {
		if existing.VerticalID == sv.VerticalID && existing.Key == sv.Key {
			return ErrDuplicateKey
		}
	}
	clone := *sv
	t.staged.subVerticals[sv.ID] = &clone
	return nil
}

func (t *memTx) InsertMVTVersion(v *truth.MVTVersion) error {
	if !t.writable {
		return errReadOnly
	}
	if _, exists := t.staged.mvtVersions[v.ID]; exists {
		return ErrDuplicateKey
	}
	clone := *v
	t.staged.mvtVersions[v.ID] = &clone
	return nil
}

func (t *memTx) InsertPersona(p *truth.Persona) error {
	if !t.writable {
		return errReadOnly
	}
	if _, exists := t.staged.personas[p.ID]; exists {
		return ErrDuplicateKey
	}
	for _, existing := range t.staged.personas {
		if existing.SubVerticalID == p.SubVerticalID && existing.Key == p.Key {
			return ErrDuplicateKey
		}
	}
	clone := *p
	t.staged.personas[p.ID] = &clone
	return nil
}

func (t *memTx) InsertPersonaPolicy(p *truth.PersonaPolicy) error {
	if !t.writable {
		return errReadOnly
	}
	if _, exists := t.staged.personaPolicies[p.ID]; exists {
		return ErrDuplicateKey
	}
	clone := *p
	t.staged.personaPolicies[p.ID] = &clone
	return nil
}

func (t *memTx) InsertPolicyTextVersion(v *truth.PolicyTextVersion) error {
	if !t.writable {
		return errReadOnly
	}
	if _, exists := t.staged.policyTexts[v.ID]; exists {
		return ErrDuplicateKey
	}
	clone := *v
	t.staged.policyTexts[v.ID] = &clone
	return nil
}

func (t *memTx) SetMVTStatus(id string, status truth.MVTStatus) error {
	if !t.writable {
		return errReadOnly
	}
	v, ok := t.staged.mvtVersions[id]
	if !ok {
		return ErrNotFound
	}
	clone := *v
	clone.Status = status
	t.staged.mvtVersions[id] = &clone
	return nil
}

func (t *memTx) SetActiveMVTPointer(subVerticalID, versionID string) error {
	if !t.writable {
		return errReadOnly
	}
	sv, ok := t.staged.subVerticals[subVerticalID]
	if !ok {
		return ErrNotFound
	}
	clone := *sv
	clone.ActiveMVTVersionID = versionID
	t.staged.subVerticals[subVerticalID] = &clone
	return nil
}

func (t *memTx) SetSubVerticalICP(subVerticalID, buyerRole, decisionOwner string) error {
	if !t.writable {
		return errReadOnly
	}
	sv, ok := t.staged.subVerticals[subVerticalID]
	if !ok {
		return ErrNotFound
	}
	clone := *sv
	clone.BuyerRole = buyerRole
	clone.DecisionOwner = decisionOwner
	t.staged.subVerticals[subVerticalID] = &clone
	return nil
}

func (t *memTx) SetPolicySource(subVerticalID, text string, format truth.SourceFormat) error {
	if !t.writable {
		return errReadOnly
	}
	sv, ok := t.staged.subVerticals[subVerticalID]
	if !ok {
		return ErrNotFound
	}
	clone := *sv
	clone.PolicySourceText = text
	clone.PolicySourceFormat = format
	t.staged.subVerticals[subVerticalID] = &clone
	return nil
}

func (t *memTx) SetPersonaPolicyStatus(id string, status truth.PolicyStatus, activatedAt *time.Time) error {
	if !t.writable {
		return errReadOnly
	}
	p, ok := t.staged.personaPolicies[id]
	if !ok {
		return ErrNotFound
	}
	clone := *p
	clone.Status = status
	if activatedAt != nil {
		clone.ActivatedAt = activatedAt
	}
	t.staged.personaPolicies[id] = &clone
	return nil
}

func (t *memTx) SetPolicyTextStatus(id string, status truth.TextStatus) error {
	if !t.writable {
		return errReadOnly
	}
	v, ok := t.staged.policyTexts[id]
	if !ok {
		return ErrNotFound
	}
	clone := *v
	clone.Status = status
	t.staged.policyTexts[id] = &clone
	return nil
}

func (t *memTx) MarkPolicyTextApproved(v *truth.PolicyTextVersion) error {
	if !t.writable {
		return errReadOnly
	}
	if _, ok := t.staged.policyTexts[v.ID]; !ok {
		return ErrNotFound
	}
	clone := *v
	t.staged.policyTexts[v.ID] = &clone
	return nil
}

var errReadOnly = readOnlyError{}

type readOnlyError struct{}

func (readOnlyError) Error() string { return "store: write attempted in read-only transaction" }
