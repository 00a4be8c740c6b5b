package store

import (
	"context"
	"testing"
	"time"

	"truthcore-hq/atlas/pkg/truth"
)

// runStoreTests exercises the Store contract against any backend.
func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("VerticalRoundTrip", func(t *testing.T) { testVerticalRoundTrip(t, newStore(t)) })
	t.Run("DuplicateKeys", func(t *testing.T) { testDuplicateKeys(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("WriteTxRollback", func(t *testing.T) { testWriteTxRollback(t, newStore(t)) })
	t.Run("MVTLifecycle", func(t *testing.T) { testMVTLifecycle(t, newStore(t)) })
	t.Run("PersonaOrdering", func(t *testing.T) { testPersonaOrdering(t, newStore(t)) })
	t.Run("PolicySource", func(t *testing.T) { testPolicySource(t, newStore(t)) })
	t.Run("PolicyTextApproval", func(t *testing.T) { testPolicyTextApproval(t, newStore(t)) })
}

func seedVertical(t *testing.T, st Store, id, key string) *truth.Vertical {
	t.Helper()
	v := &truth.Vertical{
		ID:          id,
		Key:         key,
		Name:        key,
		RegionScope: []string{"UAE", "KSA"},
		Active:      true,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := st.WriteTx(context.Background(), func(tx Tx) error {
		return tx.InsertVertical(v)
	}); err != nil {
		t.Fatalf("seed vertical: %v", err)
	}
	return v
}

func seedSubVertical(t *testing.T, st Store, id, verticalID, key string) *truth.SubVertical {
	t.Helper()
	sv := &truth.SubVertical{
		ID:                 id,
		VerticalID:         verticalID,
		Key:                key,
		Name:               key,
		PrimaryEntityType:  truth.EntityTypeCompany,
		RelatedEntityTypes: []truth.EntityType{truth.EntityTypePerson},
		Active:             true,
		CreatedAt:          time.Now().UTC().Truncate(time.Second),
	}
	if err := st.WriteTx(context.Background(), func(tx Tx) error {
		return tx.InsertSubVertical(sv)
	}); err != nil {
		t.Fatalf("seed sub-vertical: %v", err)
	}
	return sv
}

func testVerticalRoundTrip(t *testing.T, st Store) {
	defer st.Close()
	ctx := context.Background()
	seedVertical(t, st, "v1", "banking")

	if err := st.ReadTx(ctx, func(tx Tx) error {
		byID, err := tx.Vertical("v1")
		if err != nil {
			return err
		}
		if byID.Key != "banking" || !byID.Active {
			t.Errorf("Vertical = %+v", byID)
		}
		if len(byID.RegionScope) != 2 || byID.RegionScope[0] != "UAE" {
			t.Errorf("RegionScope = %v", byID.RegionScope)
		}

		byKey, err := tx.VerticalByKey("banking")
		if err != nil {
			return err
		}
		if byKey.ID != "v1" {
			t.Errorf("VerticalByKey().ID = %q, want v1", byKey.ID)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func testDuplicateKeys(t *testing.T, st Store) {
	defer st.Close()
	ctx := context.Background()
	seedVertical(t, st, "v1", "banking")
	seedSubVertical(t, st, "sv1", "v1", "employee-banking")

	if err := st.WriteTx(ctx, func(tx Tx) error {
		return tx.InsertVertical(&truth.Vertical{ID: "v2", Key: "banking", RegionScope: []string{"UAE"}})
	}); err != ErrDuplicateKey {
		t.Errorf("duplicate vertical key: err = %v, want ErrDuplicateKey", err)
	}
	if err := st.WriteTx(ctx, func(tx Tx) error {
		return tx.InsertVertical(&truth.Vertical{ID: "v1", Key: "insurance", RegionScope: []string{"UAE"}})
	}); err != ErrDuplicateKey {
		t.Errorf("duplicate vertical id: err = %v, want ErrDuplicateKey", err)
	}

	// Same sub-vertical key under a different vertical is allowed.
	seedVertical(t, st, "v3", "insurance")
	if err := st.WriteTx(ctx, func(tx Tx) error {
		return tx.InsertSubVertical(&truth.SubVertical{
			ID: "sv2", VerticalID: "v3", Key: "employee-banking",
			PrimaryEntityType: truth.EntityTypeCompany, Active: true,
		})
	}); err != nil {
		t.Errorf("same key under another vertical: err = %v, want nil", err)
	}

	if err := st.WriteTx(ctx, func(tx Tx) error {
		return tx.InsertSubVertical(&truth.SubVertical{
			ID: "sv3", VerticalID: "v1", Key: "employee-banking",
			PrimaryEntityType: truth.EntityTypeCompany,
		})
	}); err != ErrDuplicateKey {
		t.Errorf("duplicate sub-vertical key: err = %v, want ErrDuplicateKey", err)
	}
}

func testNotFound(t *testing.T, st Store) {
	defer st.Close()
	if err := st.ReadTx(context.Background(), func(tx Tx) error {
		if _, err := tx.Vertical("missing"); err != ErrNotFound {
			t.Errorf("Vertical: err = %v, want ErrNotFound", err)
		}
		if _, err := tx.VerticalByKey("missing"); err != ErrNotFound {
			t.Errorf("VerticalByKey: err = %v, want ErrNotFound", err)
		}
		if _, err := tx.SubVertical("missing"); err != ErrNotFound {
			t.Errorf("SubVertical: err = %v, want ErrNotFound", err)
		}
		if _, err := tx.MVTVersion("missing"); err != ErrNotFound {
			t.Errorf("MVTVersion: err = %v, want ErrNotFound", err)
		}
		if _, err := tx.PersonaPolicy("missing"); err != ErrNotFound {
			t.Errorf("PersonaPolicy: err = %v, want ErrNotFound", err)
		}
		if _, err := tx.PolicyTextVersion("missing"); err != ErrNotFound {
			t.Errorf("PolicyTextVersion: err = %v, want ErrNotFound", err)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func testWriteTxRollback(t *testing.T, st Store) {
	defer st.Close()
	ctx := context.Background()

	boom := truth.NewFailure(truth.CodeValidationFailed, "boom")
	err := st.WriteTx(ctx, func(tx Tx) error {
		if err := tx.InsertVertical(&truth.Vertical{ID: "v1", Key: "banking", RegionScope: []string{"UAE"}}); err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("WriteTx err = %v, want the fn error", err)
	}

	if err := st.ReadTx(ctx, func(tx Tx) error {
		if _, err := tx.Vertical("v1"); err != ErrNotFound {
			t.Errorf("after rollback: err = %v, want ErrNotFound", err)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func testMVTLifecycle(t *testing.T, st Store) {
	defer st.Close()
	ctx := context.Background()
	seedVertical(t, st, "v1", "banking")
	seedSubVertical(t, st, "sv1", "v1", "employee-banking")

	mvt := &truth.MVTVersion{
		ID:            "mvt1",
		SubVerticalID: "sv1",
		Version:       1,
		BuyerRole:     "Head of HR",
		DecisionOwner: "CHRO",
		Signals: []truth.AllowedSignal{
			{SignalKey: "headcount_growth", EntityType: truth.EntityTypeCompany, Justification: "expansion"},
		},
		KillRules: []truth.KillRule{
			{Rule: "sanctioned", Action: "drop", Reason: "sanctions compliance"},
			{Rule: "too small", Action: "drop", Reason: "below minimum"},
		},
		Scenarios: truth.SeedScenarios{Golden: []string{"a", "b"}, Kill: []string{"c", "d"}},
		Valid:     true,
		Status:    truth.MVTStatusActive,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	if err := st.WriteTx(ctx, func(tx Tx) error {
		if err := tx.InsertMVTVersion(mvt); err != nil {
			return err
		}
		return tx.SetActiveMVTPointer("sv1", "mvt1")
	}); err != nil {
		t.Fatal(err)
	}

	if err := st.ReadTx(ctx, func(tx Tx) error {
		got, err := tx.MVTVersion("mvt1")
		if err != nil {
			return err
		}
		if got.BuyerRole != "Head of HR" || len(got.Signals) != 1 || len(got.KillRules) != 2 {
			t.Errorf("MVTVersion = %+v", got)
		}
		if got.Signals[0].EntityType != truth.EntityTypeCompany {
			t.Errorf("signal entity type = %q", got.Signals[0].EntityType)
		}
		sv, err := tx.SubVertical("sv1")
		if err != nil {
			return err
		}
		if sv.ActiveMVTVersionID != "mvt1" {
			t.Errorf("pointer = %q, want mvt1", sv.ActiveMVTVersionID)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := st.WriteTx(ctx, func(tx Tx) error {
		if err := tx.SetMVTStatus("mvt1", truth.MVTStatusDeprecated); err != nil {
			return err
		}
		return tx.SetActiveMVTPointer("sv1", "")
	}); err != nil {
		t.Fatal(err)
	}

	if err := st.ReadTx(ctx, func(tx Tx) error {
		got, err := tx.MVTVersion("mvt1")
		if err != nil {
			return err
		}
		if got.Status != truth.MVTStatusDeprecated {
			t.Errorf("status = %q, want DEPRECATED", got.Status)
		}
		sv, err := tx.SubVertical("sv1")
		if err != nil {
			return err
		}
		if sv.ActiveMVTVersionID != "" {
			t.Errorf("pointer = %q, want cleared", sv.ActiveMVTVersionID)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func testPersonaOrdering(t *testing.T, st Store) {
	defer st.Close()
	ctx := context.Background()
	seedVertical(t, st, "v1", "banking")
	seedSubVertical(t, st, "sv1", "v1", "employee-banking")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// Inserted out of creation order on purpose.
	if err := st.WriteTx(ctx, func(tx Tx) error {
		for _, p := range []*truth.Persona{
			{ID: "p2", SubVerticalID: "sv1", Key: "second", Scope: truth.ScopeGlobal, Active: true, CreatedAt: base.Add(time.Hour)},
			{ID: "p1", SubVerticalID: "sv1", Key: "first", Scope: truth.ScopeGlobal, Active: true, CreatedAt: base},
		} {
			if err := tx.InsertPersona(p); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := st.ReadTx(ctx, func(tx Tx) error {
		personas, err := tx.Personas("sv1")
		if err != nil {
			return err
		}
		if len(personas) != 2 {
			t.Fatalf("got %d personas, want 2", len(personas))
		}
		if personas[0].ID != "p1" || personas[1].ID != "p2" {
			t.Errorf("order = %s, %s, want creation order p1, p2", personas[0].ID, personas[1].ID)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func testPolicySource(t *testing.T, st Store) {
	defer st.Close()
	ctx := context.Background()
	seedVertical(t, st, "v1", "banking")
	seedSubVertical(t, st, "sv1", "v1", "employee-banking")

	if err := st.WriteTx(ctx, func(tx Tx) error {
		return tx.SetPolicySource("sv1", "target the CFO", truth.SourceFormatText)
	}); err != nil {
		t.Fatal(err)
	}

	if err := st.ReadTx(ctx, func(tx Tx) error {
		sv, err := tx.SubVertical("sv1")
		if err != nil {
			return err
		}
		if sv.PolicySourceText != "target the CFO" || sv.PolicySourceFormat != truth.SourceFormatText {
			t.Errorf("staged source = %q (%q)", sv.PolicySourceText, sv.PolicySourceFormat)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func testPolicyTextApproval(t *testing.T, st Store) {
	defer st.Close()
	ctx := context.Background()
	seedVertical(t, st, "v1", "banking")
	seedSubVertical(t, st, "sv1", "v1", "employee-banking")

	min := 1000
	v := &truth.PolicyTextVersion{
		ID:            "ptv1",
		SubVerticalID: "sv1",
		Version:       1,
		SourceFormat:  truth.SourceFormatDSL,
		SourceText:    "pdl_version: \"1.0\"",
		PolicyHash:    "abc123",
		IPR: &truth.IPR{
			Thresholds:  []truth.Threshold{{Field: "headcount", Comparison: truth.CompareGTE, Value: 1000}},
			TargetRoles: []truth.TargetRoleRule{{Size: truth.SizeLarge, MinHeadcount: &min, Titles: []string{"CHRO"}}},
		},
		Confidence:      1.0,
		CompilerVersion: "pdc-test",
		Status:          truth.TextStatusPendingApproval,
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
	}
	if err := st.WriteTx(ctx, func(tx Tx) error {
		return tx.InsertPolicyTextVersion(v)
	}); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	v.Status = truth.TextStatusApproved
	v.RuntimeBinding = truth.BindingCompiledOnly
	v.ContractValidated = true
	v.ApprovedBy = "reviewer"
	v.ApprovedAt = &now
	if err := st.WriteTx(ctx, func(tx Tx) error {
		return tx.MarkPolicyTextApproved(v)
	}); err != nil {
		t.Fatal(err)
	}

	if err := st.ReadTx(ctx, func(tx Tx) error {
		got, err := tx.PolicyTextVersion("ptv1")
		if err != nil {
			return err
		}
		if got.Status != truth.TextStatusApproved {
			t.Errorf("status = %q, want approved", got.Status)
		}
		if got.RuntimeBinding != truth.BindingCompiledOnly || !got.ContractValidated {
			t.Errorf("binding = %q, contract = %v", got.RuntimeBinding, got.ContractValidated)
		}
		if got.ApprovedBy != "reviewer" || got.ApprovedAt == nil {
			t.Errorf("approved by %q at %v", got.ApprovedBy, got.ApprovedAt)
		}
		if got.IPR == nil || len(got.IPR.TargetRoles) != 1 {
			t.Errorf("IPR = %+v", got.IPR)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}
