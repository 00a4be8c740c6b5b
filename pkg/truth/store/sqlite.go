package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // pure-Go driver, registered as "sqlite"

	"truthcore-hq/atlas/pkg/truth"
)

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file path. ":memory:" is accepted for tests.
	Path string

	// Driver selects the registered driver: "sqlite3" (mattn, cgo) or
	// "sqlite" (modernc, pure Go). Default: "sqlite3".
	Driver string

	// MaxOpenConns caps open connections. Default: 10.
	MaxOpenConns int

	// MaxIdleConns caps idle connections. Default: 5.
	MaxIdleConns int

	// WALMode enables write-ahead logging. Default: true.
	WALMode bool

	// BusyTimeout is how long a connection waits on a locked database.
	// Default: 5s.
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/truth.db",
		Driver:       "sqlite3",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLite implements Store on a SQLite database.
type SQLite struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLite opens (or creates) the database, applies pragmas, and ensures
// the schema exists.
func NewSQLite(config *SQLiteConfig) (*SQLite, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = "sqlite3"
	}

	logger := slog.Default().With("component", "truth.store.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLite{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite store initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLite) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("enable WAL: %w", err)
		}
	}
	if s.config.BusyTimeout > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set busy timeout: %w", err)
		}
	}
	if _, err := s.db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ReadTx implements Store using a read-only transaction, so every read in
// fn observes one snapshot.
func (s *SQLite) ReadTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Rollback()
	return fn(&sqlTx{tx: tx, ctx: ctx})
}

// WriteTx implements Store. The transaction commits only when fn returns
// nil.
func (s *SQLite) WriteTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write transaction: %w", err)
	}
	if err := fn(&sqlTx{tx: tx, ctx: ctx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping implements Store.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// sqlTx implements Tx over a sql.Tx.
type sqlTx struct {
	tx  *sql.Tx
	ctx context.Context
}

// mapInsertErr translates driver-level uniqueness violations into
// ErrDuplicateKey. Both supported drivers report them with the same
// "UNIQUE constraint failed" text.
func mapInsertErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateKey
	}
	return err
}

func marshal(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func unmarshal[T any](data string) (T, error) {
	var v T
	if data == "" {
		return v, nil
	}
	err := json.Unmarshal([]byte(data), &v)
	return v, err
}

func timeText(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeText(*t)
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

// --- vertical ---

const verticalColumns = "id, key, name, region_scope, active, created_at"

func (t *sqlTx) scanVertical(row *sql.Row) (*truth.Vertical, error) {
	var v truth.Vertical
	var scope, created string
	err := row.Scan(&v.ID, &v.Key, &v.Name, &scope, &v.Active, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if v.RegionScope, err = unmarshal[[]string](scope); err != nil {
		return nil, fmt.Errorf("decode region_scope: %w", err)
	}
	v.CreatedAt = parseTime(created)
	return &v, nil
}

func (t *sqlTx) VerticalByKey(key string) (*truth.Vertical, error) {
	row := t.tx.QueryRowContext(t.ctx,
		"SELECT "+verticalColumns+" FROM verticals WHERE key = ?", key)
	return t.scanVertical(row)
}

func (t *sqlTx) Vertical(id string) (*truth.Vertical, error) {
	row := t.tx.QueryRowContext(t.ctx,
		"SELECT "+verticalColumns+" FROM verticals WHERE id = ?", id)
	return t.scanVertical(row)
}

func (t *sqlTx) InsertVertical(v *truth.Vertical) error {
	_, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO verticals ("+verticalColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		v.ID, v.Key, v.Name, marshal(v.RegionScope), v.Active, timeText(v.CreatedAt))
	return mapInsertErr(err)
}

// --- sub-vertical ---

const subVerticalColumns = "id, vertical_id, key, name, primary_entity_type, related_entity_types, active_mvt_version_id, buyer_role, decision_owner, policy_source_text, policy_source_format, active, created_at"

func scanSubVertical(scanner interface{ Scan(...any) error }) (*truth.SubVertical, error) {
	var sv truth.SubVertical
	var related, created string
	err := scanner.Scan(&sv.ID, &sv.VerticalID, &sv.Key, &sv.Name, &sv.PrimaryEntityType,
		&related, &sv.ActiveMVTVersionID, &sv.BuyerRole, &sv.DecisionOwner,
		&sv.PolicySourceText, &sv.PolicySourceFormat, &sv.Active, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if sv.RelatedEntityTypes, err = unmarshal[[]truth.EntityType](related); err != nil {
		return nil, fmt.Errorf("decode related_entity_types: %w", err)
	}
	sv.CreatedAt = parseTime(created)
	return &sv, nil
}

func (t *sqlTx) SubVertical(id string) (*truth.SubVertical, error) {
	return scanSubVertical(t.tx.QueryRowContext(t.ctx,
		"SELECT "+subVerticalColumns+" FROM sub_verticals WHERE id = ?", id))
}

func (t *sqlTx) SubVerticalByKey(verticalID, key string) (*truth.SubVertical, error) {
	return scanSubVertical(t.tx.QueryRowContext(t.ctx,
		"SELECT "+subVerticalColumns+" FROM sub_verticals WHERE vertical_id = ? AND key = ?",
		verticalID, key))
}

func (t *sqlTx) SubVerticals() ([]*truth.SubVertical, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		"SELECT "+subVerticalColumns+" FROM sub_verticals ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*truth.SubVertical
	for rows.Next() {
		sv, err := scanSubVertical(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (t *sqlTx) InsertSubVertical(sv *truth.SubVertical) error {
	_, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO sub_verticals ("+subVerticalColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		sv.ID, sv.VerticalID, sv.Key, sv.Name, sv.PrimaryEntityType,
		marshal(sv.RelatedEntityTypes), sv.ActiveMVTVersionID, sv.BuyerRole,
		sv.DecisionOwner, sv.PolicySourceText, sv.PolicySourceFormat,
		sv.Active, timeText(sv.CreatedAt))
	return mapInsertErr(err)
}

func (t *sqlTx) SetPolicySource(subVerticalID, text string, format truth.SourceFormat) error {
	return t.updateOne(
		"UPDATE sub_verticals SET policy_source_text = ?, policy_source_format = ? WHERE id = ?",
		text, format, subVerticalID)
}

func (t *sqlTx) SetActiveMVTPointer(subVerticalID, versionID string) error {
	return t.updateOne(
		"UPDATE sub_verticals SET active_mvt_version_id = ? WHERE id = ?",
		versionID, subVerticalID)
}

func (t *sqlTx) SetSubVerticalICP(subVerticalID, buyerRole, decisionOwner string) error {
	return t.updateOne(
		"UPDATE sub_verticals SET buyer_role = ?, decision_owner = ? WHERE id = ?",
		buyerRole, decisionOwner, subVerticalID)
}

// --- MVT versions ---

const mvtColumns = "id, sub_vertical_id, version, buyer_role, decision_owner, signals, kill_rules, scenarios, valid, validated_at, status, created_at"

func scanMVT(scanner interface{ Scan(...any) error }) (*truth.MVTVersion, error) {
	var v truth.MVTVersion
	var signals, killRules, scenarios, validated, created string
	err := scanner.Scan(&v.ID, &v.SubVerticalID, &v.Version, &v.BuyerRole, &v.DecisionOwner,
		&signals, &killRules, &scenarios, &v.Valid, &validated, &v.Status, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if v.Signals, err = unmarshal[[]truth.AllowedSignal](signals); err != nil {
		return nil, fmt.Errorf("decode signals: %w", err)
	}
	if v.KillRules, err = unmarshal[[]truth.KillRule](killRules); err != nil {
		return nil, fmt.Errorf("decode kill_rules: %w", err)
	}
	if v.Scenarios, err = unmarshal[truth.SeedScenarios](scenarios); err != nil {
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}
	v.ValidatedAt = parseTime(validated)
	v.CreatedAt = parseTime(created)
	return &v, nil
}

func (t *sqlTx) MVTVersion(id string) (*truth.MVTVersion, error) {
	return scanMVT(t.tx.QueryRowContext(t.ctx,
		"SELECT "+mvtColumns+" FROM mvt_versions WHERE id = ?", id))
}

func (t *sqlTx) MVTVersions(subVerticalID string) ([]*truth.MVTVersion, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		"SELECT "+mvtColumns+" FROM mvt_versions WHERE sub_vertical_id = ? ORDER BY version",
		subVerticalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*truth.MVTVersion
	for rows.Next() {
		v, err := scanMVT(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (t *sqlTx) InsertMVTVersion(v *truth.MVTVersion) error {
	_, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO mvt_versions ("+mvtColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		v.ID, v.SubVerticalID, v.Version, v.BuyerRole, v.DecisionOwner,
		marshal(v.Signals), marshal(v.KillRules), marshal(v.Scenarios),
		v.Valid, timeText(v.ValidatedAt), v.Status, timeText(v.CreatedAt))
	return mapInsertErr(err)
}

func (t *sqlTx) SetMVTStatus(id string, status truth.MVTStatus) error {
	return t.updateOne("UPDATE mvt_versions SET status = ? WHERE id = ?", status, id)
}

// --- personas ---

const personaColumns = "id, sub_vertical_id, key, name, mission, decision_lens, scope, region_code, active, created_at"

func (t *sqlTx) Personas(subVerticalID string) ([]*truth.Persona, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		"SELECT "+personaColumns+" FROM personas WHERE sub_vertical_id = ? ORDER BY created_at, id",
		subVerticalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*truth.Persona
	for rows.Next() {
		var p truth.Persona
		var created string
		if err := rows.Scan(&p.ID, &p.SubVerticalID, &p.Key, &p.Name, &p.Mission,
			&p.DecisionLens, &p.Scope, &p.RegionCode, &p.Active, &created); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(created)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (t *sqlTx) InsertPersona(p *truth.Persona) error {
	_, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO personas ("+personaColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.SubVerticalID, p.Key, p.Name, p.Mission, p.DecisionLens,
		p.Scope, p.RegionCode, p.Active, timeText(p.CreatedAt))
	return mapInsertErr(err)
}

// --- persona policies ---

// policyBody is the JSON document holding a persona policy's behavioral
// fields.
type policyBody struct {
	AllowedIntents  []string `json:"allowed_intents"`
	ForbiddenOutput []string `json:"forbidden_outputs"`
	AllowedTools    []string `json:"allowed_tools"`
	EvidenceScope   []string `json:"evidence_scope"`
	MemoryScope     string   `json:"memory_scope"`
	CostBudget      float64  `json:"cost_budget"`
	LatencyBudget   float64  `json:"latency_budget"`
	EscalationRules []string `json:"escalation_rules"`
	DisclaimerRules []string `json:"disclaimer_rules"`
}

const policyColumns = "id, persona_id, policy_version, status, body, activated_at, created_at"

func scanPersonaPolicy(scanner interface{ Scan(...any) error }) (*truth.PersonaPolicy, error) {
	var p truth.PersonaPolicy
	var body, created string
	var activated sql.NullString
	err := scanner.Scan(&p.ID, &p.PersonaID, &p.PolicyVersion, &p.Status,
		&body, &activated, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b, err := unmarshal[policyBody](body)
	if err != nil {
		return nil, fmt.Errorf("decode policy body: %w", err)
	}
	p.AllowedIntents = b.AllowedIntents
	p.ForbiddenOutput = b.ForbiddenOutput
	p.AllowedTools = b.AllowedTools
	p.EvidenceScope = b.EvidenceScope
	p.MemoryScope = b.MemoryScope
	p.CostBudget = b.CostBudget
	p.LatencyBudget = b.LatencyBudget
	p.EscalationRules = b.EscalationRules
	p.DisclaimerRules = b.DisclaimerRules
	p.ActivatedAt = parseNullableTime(activated)
	p.CreatedAt = parseTime(created)
	return &p, nil
}

func (t *sqlTx) PersonaPolicy(id string) (*truth.PersonaPolicy, error) {
	return scanPersonaPolicy(t.tx.QueryRowContext(t.ctx,
		"SELECT "+policyColumns+" FROM persona_policies WHERE id = ?", id))
}

func (t *sqlTx) PersonaPolicies(personaID string) ([]*truth.PersonaPolicy, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		"SELECT "+policyColumns+" FROM persona_policies WHERE persona_id = ? ORDER BY policy_version",
		personaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*truth.PersonaPolicy
	for rows.Next() {
		p, err := scanPersonaPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (t *sqlTx) InsertPersonaPolicy(p *truth.PersonaPolicy) error {
	body := policyBody{
		AllowedIntents:  p.AllowedIntents,
		ForbiddenOutput: p.ForbiddenOutput,
		AllowedTools:    p.AllowedTools,
		EvidenceScope:   p.EvidenceScope,
		MemoryScope:     p.MemoryScope,
		CostBudget:      p.CostBudget,
		LatencyBudget:   p.LatencyBudget,
		EscalationRules: p.EscalationRules,
		DisclaimerRules: p.DisclaimerRules,
	}
	_, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO persona_policies (id, persona_id, policy_version, status, body, activated_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.PersonaID, p.PolicyVersion, p.Status, marshal(body),
		nullableTime(p.ActivatedAt), timeText(p.CreatedAt))
	return mapInsertErr(err)
}

func (t *sqlTx) SetPersonaPolicyStatus(id string, status truth.PolicyStatus, activatedAt *time.Time) error {
	if activatedAt != nil {
		return t.updateOne("UPDATE persona_policies SET status = ?, activated_at = ? WHERE id = ?",
			status, timeText(*activatedAt), id)
	}
	return t.updateOne("UPDATE persona_policies SET status = ? WHERE id = ?", status, id)
}

// --- policy text versions ---

const textColumns = "id, sub_vertical_id, version, source_format, source_text, policy_hash, ipr, confidence, warnings, compiler_version, status, runtime_binding, contract_validated, approved_by, approved_at, created_at"

func scanPolicyText(scanner interface{ Scan(...any) error }) (*truth.PolicyTextVersion, error) {
	var v truth.PolicyTextVersion
	var ipr, warnings sql.NullString
	var approved sql.NullString
	var created string
	err := scanner.Scan(&v.ID, &v.SubVerticalID, &v.Version, &v.SourceFormat, &v.SourceText,
		&v.PolicyHash, &ipr, &v.Confidence, &warnings, &v.CompilerVersion, &v.Status,
		&v.RuntimeBinding, &v.ContractValidated, &v.ApprovedBy, &approved, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ipr.Valid && ipr.String != "" {
		parsed, err := unmarshal[*truth.IPR](ipr.String)
		if err != nil {
			return nil, fmt.Errorf("decode ipr: %w", err)
		}
		v.IPR = parsed
	}
	if warnings.Valid && warnings.String != "" {
		parsed, err := unmarshal[[]string](warnings.String)
		if err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
		v.Warnings = parsed
	}
	v.ApprovedAt = parseNullableTime(approved)
	v.CreatedAt = parseTime(created)
	return &v, nil
}

func (t *sqlTx) PolicyTextVersion(id string) (*truth.PolicyTextVersion, error) {
	return scanPolicyText(t.tx.QueryRowContext(t.ctx,
		"SELECT "+textColumns+" FROM policy_text_versions WHERE id = ?", id))
}

func (t *sqlTx) PolicyTextVersions(subVerticalID string) ([]*truth.PolicyTextVersion, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		"SELECT "+textColumns+" FROM policy_text_versions WHERE sub_vertical_id = ? ORDER BY version",
		subVerticalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*truth.PolicyTextVersion
	for rows.Next() {
		v, err := scanPolicyText(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (t *sqlTx) InsertPolicyTextVersion(v *truth.PolicyTextVersion) error {
	var ipr any
	if v.IPR != nil {
		ipr = marshal(v.IPR)
	}
	var warnings any
	if v.Warnings != nil {
		warnings = marshal(v.Warnings)
	}
	_, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO policy_text_versions ("+textColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		v.ID, v.SubVerticalID, v.Version, v.SourceFormat, v.SourceText, v.PolicyHash,
		ipr, v.Confidence, warnings, v.CompilerVersion, v.Status, v.RuntimeBinding,
		v.ContractValidated, v.ApprovedBy, nullableTime(v.ApprovedAt), timeText(v.CreatedAt))
	return mapInsertErr(err)
}

func (t *sqlTx) SetPolicyTextStatus(id string, status truth.TextStatus) error {
	return t.updateOne("UPDATE policy_text_versions SET status = ? WHERE id = ?", status, id)
}

func (t *sqlTx) MarkPolicyTextApproved(v *truth.PolicyTextVersion) error {
	var ipr any
	if v.IPR != nil {
		ipr = marshal(v.IPR)
	}
	return t.updateOne(
		"UPDATE policy_text_versions SET status = ?, runtime_binding = ?, contract_validated = ?, ipr = ?, approved_by = ?, approved_at = ? WHERE id = ?",
		v.Status, v.RuntimeBinding, v.ContractValidated, ipr, v.ApprovedBy,
		nullableTime(v.ApprovedAt), v.ID)
}

// updateOne executes an update that must touch exactly one row.
func (t *sqlTx) updateOne(query string, args ...any) error {
	res, err := t.tx.ExecContext(t.ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
