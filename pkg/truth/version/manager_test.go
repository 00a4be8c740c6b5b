package version

import (
	"context"
	"fmt"
	"testing"
	"time"

	"truthcore-hq/atlas/pkg/truth"
	"truthcore-hq/atlas/pkg/truth/store"
)

func newTestManager(t *testing.T) (*Manager, store.Store) {
	t.Helper()
	st := store.NewMemory()
	t.Cleanup(func() { st.Close() })

	seq := 0
	m := NewManager(st, nil, nil).
		WithClock(func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }).
		WithIDFunc(func() string { seq++; return fmt.Sprintf("id-%04d", seq) })
	return m, st
}

func validCandidate() *truth.MVTCandidate {
	return &truth.MVTCandidate{
		BuyerRole:     "Head of HR",
		DecisionOwner: "CHRO",
		Signals: []truth.AllowedSignal{
			{SignalKey: "headcount_growth", EntityType: truth.EntityTypeCompany, Justification: "growing teams open payroll accounts"},
		},
		KillRules: []truth.KillRule{
			{Rule: "company on sanctions list", Action: "drop", Reason: "sanctions compliance"},
			{Rule: "headcount below 10", Action: "drop", Reason: "too small to serve"},
		},
		Scenarios: truth.SeedScenarios{
			Golden: []string{"500-person logistics firm", "regional retail chain"},
			Kill:   []string{"sanctioned entity", "5-person startup"},
		},
	}
}

// seedSubVertical creates a vertical plus sub-vertical and returns the
// sub-vertical id.
func seedSubVertical(t *testing.T, m *Manager) string {
	t.Helper()
	ctx := context.Background()

	v, err := m.CreateVertical(ctx, "ops", "banking", "Banking", []string{"UAE", "KSA"})
	if err != nil {
		t.Fatalf("CreateVertical() error: %v", err)
	}
	sv, err := m.CreateSubVertical(ctx, "ops", v.ID, "employee-banking", "Employee Banking",
		truth.EntityTypeCompany, []truth.EntityType{truth.EntityTypePerson})
	if err != nil {
		t.Fatalf("CreateSubVertical() error: %v", err)
	}
	return sv.ID
}

func TestCreateVerticalValidation(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.CreateVertical(ctx, "ops", "", "No Key", []string{"UAE"}); !hasCode(err, truth.CodeInvalidInput) {
		t.Errorf("empty key: err = %v, want INVALID_INPUT", err)
	}
	if _, err := m.CreateVertical(ctx, "ops", "banking", "Banking", nil); !hasCode(err, truth.CodeInvalidInput) {
		t.Errorf("empty region scope: err = %v, want INVALID_INPUT", err)
	}
}

func TestCreateVerticalDuplicateKey(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.CreateVertical(ctx, "ops", "banking", "Banking", []string{"UAE"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := m.CreateVertical(ctx, "ops", "banking", "Banking Again", []string{"KSA"}); !hasCode(err, truth.CodeDuplicateKey) {
		t.Errorf("err = %v, want DUPLICATE_KEY", err)
	}
}

func TestCreateSubVerticalUnknownEntityType(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	v, err := m.CreateVertical(ctx, "ops", "banking", "Banking", []string{"UAE"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateSubVertical(ctx, "ops", v.ID, "x", "X", "organization", nil); !hasCode(err, truth.CodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT for unknown entity type", err)
	}
	if _, err := m.CreateSubVertical(ctx, "ops", "no-such-vertical", "x", "X", truth.EntityTypeCompany, nil); !hasCode(err, truth.CodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND for missing parent", err)
	}
}

func TestCreateVersionFirstBecomesActive(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	created, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatalf("CreateVersion() error: %v", err)
	}
	if created.Version != 1 {
		t.Errorf("Version = %d, want 1", created.Version)
	}
	if created.Status != truth.MVTStatusActive {
		t.Errorf("Status = %q, want ACTIVE", created.Status)
	}
	if !created.Valid {
		t.Error("Valid = false, want true")
	}

	var sv *truth.SubVertical
	if err := st.ReadTx(ctx, func(tx store.Tx) error {
		var err error
		sv, err = tx.SubVertical(svID)
		return err
	}); err != nil {
		t.Fatal(err)
	}
	if sv.ActiveMVTVersionID != created.ID {
		t.Errorf("ActiveMVTVersionID = %q, want %q", sv.ActiveMVTVersionID, created.ID)
	}
}

func TestCreateVersionInvalidCandidateCreatesNothing(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	bad := validCandidate()
	bad.KillRules = bad.KillRules[:1]

	_, err := m.CreateVersion(ctx, "ops", svID, bad)
	if !hasCode(err, truth.CodeValidationFailed) {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}

	if err := st.ReadTx(ctx, func(tx store.Tx) error {
		versions, err := tx.MVTVersions(svID)
		if err != nil {
			return err
		}
		if len(versions) != 0 {
			t.Errorf("got %d stored versions, want 0 after rejected create", len(versions))
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestCreateVersionSupersedesActive(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	v1, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatal(err)
	}
	v2, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatal(err)
	}
	if v2.Version != 2 {
		t.Errorf("Version = %d, want 2", v2.Version)
	}

	assertSingleActive(t, st, svID, v2.ID)

	if err := st.ReadTx(ctx, func(tx store.Tx) error {
		old, err := tx.MVTVersion(v1.ID)
		if err != nil {
			return err
		}
		if old.Status != truth.MVTStatusDeprecated {
			t.Errorf("v1 status = %q, want DEPRECATED", old.Status)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestActivateOlderVersion(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	v1, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateVersion(ctx, "ops", svID, validCandidate()); err != nil {
		t.Fatal(err)
	}

	activated, err := m.Activate(ctx, "ops", v1.ID)
	if err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	if activated.Status != truth.MVTStatusActive {
		t.Errorf("Status = %q, want ACTIVE", activated.Status)
	}
	assertSingleActive(t, st, svID, v1.ID)
}

func TestActivateAlreadyActiveIsNoop(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	v1, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Activate(ctx, "ops", v1.ID); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	assertSingleActive(t, st, svID, v1.ID)
}

func TestActivateMissingVersion(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Activate(context.Background(), "ops", "no-such-id"); !hasCode(err, truth.CodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestDeprecateActiveClearsPointer(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	v1, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Deprecate(ctx, "ops", v1.ID); err != nil {
		t.Fatalf("Deprecate() error: %v", err)
	}

	if err := st.ReadTx(ctx, func(tx store.Tx) error {
		sv, err := tx.SubVertical(svID)
		if err != nil {
			return err
		}
		if sv.ActiveMVTVersionID != "" {
			t.Errorf("ActiveMVTVersionID = %q, want cleared", sv.ActiveMVTVersionID)
		}
		old, err := tx.MVTVersion(v1.ID)
		if err != nil {
			return err
		}
		if old.Status != truth.MVTStatusDeprecated {
			t.Errorf("status = %q, want DEPRECATED", old.Status)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestVersionNumbersMonotonicAfterDeprecation(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	v1, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatal(err)
	}
	v2, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Deprecate(ctx, "ops", v2.ID); err != nil {
		t.Fatal(err)
	}

	v3, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatal(err)
	}
	if v1.Version != 1 || v2.Version != 2 || v3.Version != 3 {
		t.Errorf("versions = %d, %d, %d, want 1, 2, 3", v1.Version, v2.Version, v3.Version)
	}
}

func TestUpdateICP(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if err := m.UpdateICP(ctx, "ops", svID, ICPUpdate{BuyerRole: "VP People"}); err != nil {
		t.Fatalf("UpdateICP() error: %v", err)
	}

	if err := st.ReadTx(ctx, func(tx store.Tx) error {
		sv, err := tx.SubVertical(svID)
		if err != nil {
			return err
		}
		if sv.BuyerRole != "VP People" {
			t.Errorf("BuyerRole = %q, want %q", sv.BuyerRole, "VP People")
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateVersionMergesAndMints(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	v1, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatal(err)
	}

	v2, err := m.UpdateVersion(ctx, "ops", svID, &truth.MVTCandidate{BuyerRole: "CFO"})
	if err != nil {
		t.Fatalf("UpdateVersion() error: %v", err)
	}

	if v2.Version != 2 {
		t.Errorf("Version = %d, want 2", v2.Version)
	}
	if v2.BuyerRole != "CFO" {
		t.Errorf("BuyerRole = %q, want %q", v2.BuyerRole, "CFO")
	}
	if v2.DecisionOwner != v1.DecisionOwner {
		t.Errorf("DecisionOwner = %q, want the current version's %q", v2.DecisionOwner, v1.DecisionOwner)
	}
	if len(v2.KillRules) != len(v1.KillRules) {
		t.Errorf("got %d kill rules, want the current version's %d", len(v2.KillRules), len(v1.KillRules))
	}
	assertSingleActive(t, st, svID, v2.ID)
}

func TestUpdateVersionInvalidMergeCreatesNothing(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	v1, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatal(err)
	}

	// A set field replaces, it does not append: one kill rule fails the
	// two-rule minimum, so the merged result must be rejected whole.
	partial := &truth.MVTCandidate{KillRules: validCandidate().KillRules[:1]}
	if _, err := m.UpdateVersion(ctx, "ops", svID, partial); !hasCode(err, truth.CodeValidationFailed) {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}

	if err := st.ReadTx(ctx, func(tx store.Tx) error {
		versions, err := tx.MVTVersions(svID)
		if err != nil {
			return err
		}
		if len(versions) != 1 {
			t.Errorf("got %d versions after rejected update, want 1", len(versions))
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	assertSingleActive(t, st, svID, v1.ID)
}

func TestUpdateVersionRequiresActiveVersion(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	partial := &truth.MVTCandidate{BuyerRole: "CFO"}
	if _, err := m.UpdateVersion(ctx, "ops", svID, partial); !hasCode(err, truth.CodeNotFound) {
		t.Errorf("no versions at all: err = %v, want NOT_FOUND", err)
	}

	v1, err := m.CreateVersion(ctx, "ops", svID, validCandidate())
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Deprecate(ctx, "ops", v1.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.UpdateVersion(ctx, "ops", svID, partial); !hasCode(err, truth.CodeNotFound) {
		t.Errorf("after deprecation: err = %v, want NOT_FOUND", err)
	}
}

func TestUpdateICPImmutableEntityType(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	err := m.UpdateICP(ctx, "ops", svID, ICPUpdate{PrimaryEntityType: truth.EntityTypePerson})
	if !hasCode(err, truth.CodeImmutableField) {
		t.Errorf("err = %v, want IMMUTABLE_FIELD", err)
	}

	// Restating the current value is not a change and must pass.
	if err := m.UpdateICP(ctx, "ops", svID, ICPUpdate{PrimaryEntityType: truth.EntityTypeCompany}); err != nil {
		t.Errorf("restating current value: err = %v, want nil", err)
	}
}

func TestCreatePersonaScopeRules(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	_, err := m.CreatePersona(ctx, "ops", &truth.Persona{
		SubVerticalID: svID, Key: "uae-advisor", Scope: truth.ScopeLocal,
	})
	if !hasCode(err, truth.CodeInvalidInput) {
		t.Errorf("LOCAL without region: err = %v, want INVALID_INPUT", err)
	}

	created, err := m.CreatePersona(ctx, "ops", &truth.Persona{
		SubVerticalID: svID, Key: "global-advisor", Scope: truth.ScopeGlobal, RegionCode: "UAE",
	})
	if err != nil {
		t.Fatalf("CreatePersona() error: %v", err)
	}
	if created.RegionCode != "" {
		t.Errorf("GLOBAL persona RegionCode = %q, want discarded", created.RegionCode)
	}
}

func TestActivatePersonaPolicySupersedes(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	persona, err := m.CreatePersona(ctx, "ops", &truth.Persona{
		SubVerticalID: svID, Key: "advisor", Scope: truth.ScopeGlobal,
	})
	if err != nil {
		t.Fatal(err)
	}

	p1, err := m.CreatePersonaPolicy(ctx, "ops", &truth.PersonaPolicy{PersonaID: persona.ID})
	if err != nil {
		t.Fatal(err)
	}
	p2, err := m.CreatePersonaPolicy(ctx, "ops", &truth.PersonaPolicy{PersonaID: persona.ID})
	if err != nil {
		t.Fatal(err)
	}
	if p1.PolicyVersion != 1 || p2.PolicyVersion != 2 {
		t.Errorf("policy versions = %d, %d, want 1, 2", p1.PolicyVersion, p2.PolicyVersion)
	}
	if p1.Status != truth.PolicyStatusDraft {
		t.Errorf("new policy status = %q, want DRAFT", p1.Status)
	}

	if err := m.ActivatePersonaPolicy(ctx, "ops", p1.ID); err != nil {
		t.Fatal(err)
	}
	if err := m.ActivatePersonaPolicy(ctx, "ops", p2.ID); err != nil {
		t.Fatal(err)
	}

	if err := st.ReadTx(ctx, func(tx store.Tx) error {
		policies, err := tx.PersonaPolicies(persona.ID)
		if err != nil {
			return err
		}
		var active int
		for _, p := range policies {
			if p.Status == truth.PolicyStatusActive {
				active++
				if p.ID != p2.ID {
					t.Errorf("active policy = %q, want %q", p.ID, p2.ID)
				}
				if p.ActivatedAt == nil {
					t.Error("active policy has nil ActivatedAt")
				}
			}
		}
		if active != 1 {
			t.Errorf("got %d active policies, want exactly 1", active)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

// assertSingleActive checks the at-most-one-ACTIVE invariant and that the
// sub-vertical pointer names the expected version.
func assertSingleActive(t *testing.T, st store.Store, svID, wantActiveID string) {
	t.Helper()
	if err := st.ReadTx(context.Background(), func(tx store.Tx) error {
		versions, err := tx.MVTVersions(svID)
		if err != nil {
			return err
		}
		var active int
		for _, v := range versions {
			if v.Status == truth.MVTStatusActive {
				active++
				if v.ID != wantActiveID {
					t.Errorf("active version = %q, want %q", v.ID, wantActiveID)
				}
			}
		}
		if active != 1 {
			t.Errorf("got %d active versions, want exactly 1", active)
		}

		sv, err := tx.SubVertical(svID)
		if err != nil {
			return err
		}
		if sv.ActiveMVTVersionID != wantActiveID {
			t.Errorf("ActiveMVTVersionID = %q, want %q", sv.ActiveMVTVersionID, wantActiveID)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func hasCode(err error, code truth.Code) bool {
	f, ok := truth.AsFailure(err)
	return ok && f.Code == code
}
