package version

import (
	"context"
	"strings"
	"testing"

	"truthcore-hq/atlas/pkg/truth"
	"truthcore-hq/atlas/pkg/truth/store"
)

const testPDL = `pdl_version: "1.0"
name: employee-banking-targets
thresholds:
  - field: headcount
    comparison: gte
    value: 1000
target_roles:
  - size: large
    min_headcount: 1000
    titles:
      - CHRO
  - size: small
    titles:
      - Founder
`

const testFreeText = "For enterprise companies target the CFO and Head of Payroll. " +
	"For small companies target the Founder. Skip companies under 10 employees."

func TestInterpretRequiresStagedSource(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if _, err := m.Interpret(ctx, "reviewer", svID); !hasCode(err, truth.CodeNoPolicyText) {
		t.Errorf("err = %v, want NO_POLICY_TEXT", err)
	}
}

func TestSavePolicySourceRejectsUnknownFormat(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if err := m.SavePolicySource(ctx, "ops", svID, "markdown", "# policy"); !hasCode(err, truth.CodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestInterpretDSL(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if err := m.SavePolicySource(ctx, "ops", svID, truth.SourceFormatDSL, testPDL); err != nil {
		t.Fatalf("SavePolicySource() error: %v", err)
	}
	created, err := m.Interpret(ctx, "reviewer", svID)
	if err != nil {
		t.Fatalf("Interpret() error: %v", err)
	}

	if created.Version != 1 {
		t.Errorf("Version = %d, want 1", created.Version)
	}
	if created.Status != truth.TextStatusPendingApproval {
		t.Errorf("Status = %q, want pending_approval", created.Status)
	}
	if created.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 for DSL", created.Confidence)
	}
	if created.PolicyHash != PolicyHash(testPDL) {
		t.Errorf("PolicyHash = %q, want content hash of the source", created.PolicyHash)
	}
	if created.IPR == nil || len(created.IPR.TargetRoles) != 2 {
		t.Errorf("IPR = %+v, want 2 target-role rules", created.IPR)
	}
}

func TestInterpretFreeText(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if err := m.SavePolicySource(ctx, "ops", svID, truth.SourceFormatText, testFreeText); err != nil {
		t.Fatal(err)
	}
	created, err := m.Interpret(ctx, "reviewer", svID)
	if err != nil {
		t.Fatalf("Interpret() error: %v", err)
	}

	if created.Confidence <= 0 || created.Confidence > 1 {
		t.Errorf("Confidence = %v, want within (0, 1]", created.Confidence)
	}
	if created.IPR == nil || len(created.IPR.TargetRoles) == 0 {
		t.Errorf("IPR = %+v, want extracted target-role rules", created.IPR)
	}
}

func TestInterpretBlockedByPendingVersion(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if err := m.SavePolicySource(ctx, "ops", svID, truth.SourceFormatDSL, testPDL); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Interpret(ctx, "reviewer", svID); err != nil {
		t.Fatal(err)
	}

	_, err := m.Interpret(ctx, "reviewer", svID)
	if !hasCode(err, truth.CodePendingInterpretationExists) {
		t.Errorf("err = %v, want PENDING_INTERPRETATION_EXISTS", err)
	}
}

func TestInterpretInvalidDSLCreatesNothing(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if err := m.SavePolicySource(ctx, "ops", svID, truth.SourceFormatDSL, "name: broken\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Interpret(ctx, "reviewer", svID); !hasCode(err, truth.CodeValidationFailed) {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}

	if err := st.ReadTx(ctx, func(tx store.Tx) error {
		versions, err := tx.PolicyTextVersions(svID)
		if err != nil {
			return err
		}
		if len(versions) != 0 {
			t.Errorf("got %d versions, want 0 after failed compile", len(versions))
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestApproveDSL(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if err := m.SavePolicySource(ctx, "ops", svID, truth.SourceFormatDSL, testPDL); err != nil {
		t.Fatal(err)
	}
	pending, err := m.Interpret(ctx, "reviewer", svID)
	if err != nil {
		t.Fatal(err)
	}

	result, err := m.Approve(ctx, "reviewer", pending.ID, nil)
	if err != nil {
		t.Fatalf("Approve() error: %v", err)
	}

	v := result.Version
	if v.Status != truth.TextStatusApproved {
		t.Errorf("Status = %q, want approved", v.Status)
	}
	if v.RuntimeBinding != truth.BindingCompiledOnly {
		t.Errorf("RuntimeBinding = %q, want compiled_ipr_only", v.RuntimeBinding)
	}
	if !v.ContractValidated {
		t.Error("ContractValidated = false, want true for DSL")
	}
	if v.ApprovedBy != "reviewer" {
		t.Errorf("ApprovedBy = %q, want reviewer", v.ApprovedBy)
	}
	if v.ApprovedAt == nil {
		t.Error("ApprovedAt is nil")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none for DSL", result.Warnings)
	}
}

func TestApproveFreeTextCarriesDeprecationWarning(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if err := m.SavePolicySource(ctx, "ops", svID, truth.SourceFormatText, testFreeText); err != nil {
		t.Fatal(err)
	}
	pending, err := m.Interpret(ctx, "reviewer", svID)
	if err != nil {
		t.Fatal(err)
	}

	result, err := m.Approve(ctx, "reviewer", pending.ID, nil)
	if err != nil {
		t.Fatalf("Approve() error: %v", err)
	}

	v := result.Version
	if v.RuntimeBinding != truth.BindingInterpreterAllowed {
		t.Errorf("RuntimeBinding = %q, want interpreter_allowed", v.RuntimeBinding)
	}
	if v.ContractValidated {
		t.Error("ContractValidated = true, want false for free text")
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "interpreter_allowed") {
		t.Errorf("Warnings = %v, want the binding deprecation warning", result.Warnings)
	}
}

func TestApproveHashMismatch(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	// A version whose recorded hash no longer matches its stored source
	// means the source was altered after interpretation.
	tampered := &truth.PolicyTextVersion{
		ID:            "tampered-1",
		SubVerticalID: svID,
		Version:       1,
		SourceFormat:  truth.SourceFormatDSL,
		SourceText:    testPDL,
		PolicyHash:    PolicyHash(testPDL + "\n# altered"),
		Status:        truth.TextStatusPendingApproval,
	}
	if err := st.WriteTx(ctx, func(tx store.Tx) error {
		return tx.InsertPolicyTextVersion(tampered)
	}); err != nil {
		t.Fatal(err)
	}

	_, err := m.Approve(ctx, "reviewer", tampered.ID, nil)
	if !hasCode(err, truth.CodeApprovalHashMismatch) {
		t.Fatalf("err = %v, want APPROVAL_HASH_MISMATCH", err)
	}

	if err := st.ReadTx(ctx, func(tx store.Tx) error {
		v, err := tx.PolicyTextVersion(tampered.ID)
		if err != nil {
			return err
		}
		if v.Status != truth.TextStatusPendingApproval {
			t.Errorf("status = %q, want unchanged pending_approval", v.Status)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestApproveRelintFailure(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	broken := "name: broken\n"
	bad := &truth.PolicyTextVersion{
		ID:            "bad-dsl-1",
		SubVerticalID: svID,
		Version:       1,
		SourceFormat:  truth.SourceFormatDSL,
		SourceText:    broken,
		PolicyHash:    PolicyHash(broken),
		Status:        truth.TextStatusPendingApproval,
	}
	if err := st.WriteTx(ctx, func(tx store.Tx) error {
		return tx.InsertPolicyTextVersion(bad)
	}); err != nil {
		t.Fatal(err)
	}

	_, err := m.Approve(ctx, "reviewer", bad.ID, nil)
	if !hasCode(err, truth.CodeApprovalContractFailed) {
		t.Errorf("err = %v, want APPROVAL_CONTRACT_FAILED", err)
	}
}

func TestApproveWithEditedIPR(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if err := m.SavePolicySource(ctx, "ops", svID, truth.SourceFormatText, testFreeText); err != nil {
		t.Fatal(err)
	}
	pending, err := m.Interpret(ctx, "reviewer", svID)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("invalid edit rejected", func(t *testing.T) {
		edited := &truth.IPR{TargetRoles: []truth.TargetRoleRule{{Size: "gigantic", Titles: []string{"CFO"}}}}
		if _, err := m.Approve(ctx, "reviewer", pending.ID, edited); !hasCode(err, truth.CodeValidationFailed) {
			t.Errorf("err = %v, want VALIDATION_FAILED", err)
		}
	})

	t.Run("valid edit stored", func(t *testing.T) {
		edited := &truth.IPR{TargetRoles: []truth.TargetRoleRule{{Size: truth.SizeLarge, Titles: []string{"CHRO"}}}}
		result, err := m.Approve(ctx, "reviewer", pending.ID, edited)
		if err != nil {
			t.Fatalf("Approve() error: %v", err)
		}
		roles := result.Version.IPR.Roles()
		if len(roles) != 1 || roles[0] != "CHRO" {
			t.Errorf("approved IPR roles = %v, want the edited [CHRO]", roles)
		}
	})
}

func TestApproveSupersedesPriorApproved(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if err := m.SavePolicySource(ctx, "ops", svID, truth.SourceFormatDSL, testPDL); err != nil {
		t.Fatal(err)
	}
	first, err := m.Interpret(ctx, "reviewer", svID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Approve(ctx, "reviewer", first.ID, nil); err != nil {
		t.Fatal(err)
	}

	second, err := m.Interpret(ctx, "reviewer", svID)
	if err != nil {
		t.Fatalf("re-interpret after approval: %v", err)
	}
	if second.Version != 2 {
		t.Errorf("Version = %d, want 2", second.Version)
	}
	if _, err := m.Approve(ctx, "reviewer", second.ID, nil); err != nil {
		t.Fatal(err)
	}

	if err := st.ReadTx(ctx, func(tx store.Tx) error {
		versions, err := tx.PolicyTextVersions(svID)
		if err != nil {
			return err
		}
		var approved int
		for _, v := range versions {
			if v.Status == truth.TextStatusApproved {
				approved++
				if v.ID != second.ID {
					t.Errorf("approved version = %q, want %q", v.ID, second.ID)
				}
			}
		}
		if approved != 1 {
			t.Errorf("got %d approved versions, want exactly 1", approved)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestRejectClearsTheWay(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	svID := seedSubVertical(t, m)

	if err := m.SavePolicySource(ctx, "ops", svID, truth.SourceFormatDSL, testPDL); err != nil {
		t.Fatal(err)
	}
	pending, err := m.Interpret(ctx, "reviewer", svID)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Reject(ctx, "reviewer", pending.ID); err != nil {
		t.Fatalf("Reject() error: %v", err)
	}

	// A rejected version no longer blocks re-interpretation.
	if _, err := m.Interpret(ctx, "reviewer", svID); err != nil {
		t.Errorf("re-interpret after reject: %v", err)
	}

	// And cannot be approved afterwards.
	if _, err := m.Approve(ctx, "reviewer", pending.ID, nil); !hasCode(err, truth.CodeInvalidInput) {
		t.Errorf("approve rejected version: err = %v, want INVALID_INPUT", err)
	}
}

func TestPolicyHashStable(t *testing.T) {
	h1 := PolicyHash("target the CFO")
	h2 := PolicyHash("target the CFO")
	h3 := PolicyHash("target the CTO")
	if h1 != h2 {
		t.Error("hash not stable for identical source")
	}
	if h1 == h3 {
		t.Error("hash collision for different source")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
}
