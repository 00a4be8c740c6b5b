package version

import (
	"context"
	"strings"

	"truthcore-hq/atlas/pkg/pdl/parser"
	"truthcore-hq/atlas/pkg/truth"
	"truthcore-hq/atlas/pkg/truth/compiler"
	"truthcore-hq/atlas/pkg/truth/store"
	"truthcore-hq/atlas/pkg/truth/validator"
)

// freeTextDeprecationWarning is surfaced on every free-text approval: free
// text is inherently reinterpretable and non-deterministic, so the
// interpreter_allowed binding is a compatibility escape hatch, not a
// recommendation.
const freeTextDeprecationWarning = "free-text policies approve with runtime_binding=interpreter_allowed, which is deprecated; author the policy in PDL to freeze interpretation at approval time"

// SavePolicySource stages policy source text on the sub-vertical. Staged
// source has no runtime effect until it is interpreted and approved.
func (m *Manager) SavePolicySource(ctx context.Context, actor, subVerticalID string, format truth.SourceFormat, text string) error {
	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		if format != truth.SourceFormatText && format != truth.SourceFormatDSL {
			return truth.NewFailure(truth.CodeInvalidInput,
				"unknown source_format %q (known: text, dsl)", format)
		}
		if _, err := tx.SubVertical(subVerticalID); err != nil {
			return mapStoreErr(err, "sub-vertical")
		}
		return tx.SetPolicySource(subVerticalID, text, format)
	})

	m.audit(actor, "policy_text.save_source", subVerticalID,
		map[string]any{"format": format, "source_bytes": len(text)}, err)
	return err
}

// Interpret compiles the sub-vertical's staged policy source into a new
// pending_approval version. It fails with NO_POLICY_TEXT when nothing is
// staged and with PENDING_INTERPRETATION_EXISTS when a draft or
// pending_approval version already exists — an in-flight review must be
// approved or rejected explicitly before re-interpreting, never silently
// overwritten.
func (m *Manager) Interpret(ctx context.Context, actor, subVerticalID string) (*truth.PolicyTextVersion, error) {
	var created *truth.PolicyTextVersion

	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		sv, err := tx.SubVertical(subVerticalID)
		if err != nil {
			return mapStoreErr(err, "sub-vertical")
		}
		if strings.TrimSpace(sv.PolicySourceText) == "" {
			return truth.NewFailure(truth.CodeNoPolicyText,
				"sub-vertical %q has no staged policy source text", sv.Key)
		}

		existing, err := tx.PolicyTextVersions(subVerticalID)
		if err != nil {
			return err
		}
		for _, v := range existing {
			if v.Status == truth.TextStatusDraft || v.Status == truth.TextStatusPendingApproval {
				return truth.NewFailure(truth.CodePendingInterpretationExists,
					"version %d is still %s; approve or reject it before re-interpreting", v.Version, v.Status).
					With("pending_version_id", v.ID)
			}
		}

		out, err := m.compiler.Compile(sv.PolicySourceFormat, sv.PolicySourceText)
		if err != nil {
			return truth.NewFailure(truth.CodeValidationFailed,
				"policy source failed to compile: %v", err)
		}

		created = &truth.PolicyTextVersion{
			ID:              m.newID(),
			SubVerticalID:   subVerticalID,
			Version:         nextTextVersion(existing),
			SourceFormat:    sv.PolicySourceFormat,
			SourceText:      sv.PolicySourceText,
			PolicyHash:      PolicyHash(sv.PolicySourceText),
			IPR:             out.IPR,
			Confidence:      out.Confidence,
			Warnings:        out.Warnings,
			CompilerVersion: compiler.Version,
			Status:          truth.TextStatusPendingApproval,
			CreatedAt:       m.now(),
		}
		return mapStoreErr(tx.InsertPolicyTextVersion(created), "policy text version")
	})

	m.audit(actor, "policy_text.interpret", subVerticalID, nil, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ApprovalResult is what a successful approval returns: the approved
// version plus any warnings the approver should see.
type ApprovalResult struct {
	Version  *truth.PolicyTextVersion `json:"version"`
	Warnings []string                 `json:"warnings,omitempty"`
}

// Approve promotes a pending version to approved. The reviewer may pass an
// edited IPR, which is re-validated before anything else.
//
// DSL-sourced versions go through the approval contract: the stored source
// is re-linted (any lint error aborts), its hash is recomputed against the
// hash recorded at interpretation time (a mismatch means the source was
// tampered with after interpretation and aborts), and the runtime binding
// is forced to compiled_ipr_only. Free-text versions skip the lint/hash
// gate but approve with the deprecated interpreter_allowed binding and a
// warning.
//
// On success any other approved version for the sub-vertical is deprecated
// in the same transaction.
func (m *Manager) Approve(ctx context.Context, actor, versionID string, editedIPR *truth.IPR) (*ApprovalResult, error) {
	var result *ApprovalResult

	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		target, err := tx.PolicyTextVersion(versionID)
		if err != nil {
			return mapStoreErr(err, "policy text version")
		}
		if target.Status != truth.TextStatusPendingApproval && target.Status != truth.TextStatusDraft {
			return truth.NewFailure(truth.CodeInvalidInput,
				"version %d is %s and cannot be approved", target.Version, target.Status)
		}

		ipr := target.IPR
		if editedIPR != nil {
			ipr = editedIPR
		}
		if vr := validator.ValidateIPR(ipr); !vr.Valid {
			return vr.ToFailure()
		}

		var warnings []string
		switch target.SourceFormat {
		case truth.SourceFormatDSL:
			if lintErrs := parser.Lint([]byte(target.SourceText), ""); lintErrs.HasErrors() {
				return truth.NewFailure(truth.CodeApprovalContractFailed,
					"stored DSL source no longer lints cleanly (%d error(s))", lintErrs.Count()).
					With("lint_errors", lintErrs.Messages())
			}
			if recomputed := PolicyHash(target.SourceText); recomputed != target.PolicyHash {
				return truth.NewFailure(truth.CodeApprovalHashMismatch,
					"stored source hash does not match the hash recorded at interpretation time").
					With("recorded_hash", target.PolicyHash).
					With("recomputed_hash", recomputed)
			}
			target.RuntimeBinding = truth.BindingCompiledOnly
		default:
			target.RuntimeBinding = truth.BindingInterpreterAllowed
			warnings = append(warnings, freeTextDeprecationWarning)
		}

		siblings, err := tx.PolicyTextVersions(target.SubVerticalID)
		if err != nil {
			return err
		}
		for _, v := range siblings {
			if v.Status == truth.TextStatusApproved && v.ID != target.ID {
				if err := tx.SetPolicyTextStatus(v.ID, truth.TextStatusDeprecated); err != nil {
					return err
				}
			}
		}

		now := m.now()
		target.IPR = ipr
		target.Status = truth.TextStatusApproved
		target.ContractValidated = target.SourceFormat == truth.SourceFormatDSL
		target.ApprovedBy = actor
		target.ApprovedAt = &now
		if err := tx.MarkPolicyTextApproved(target); err != nil {
			return err
		}

		result = &ApprovalResult{Version: target, Warnings: warnings}
		return nil
	})

	m.audit(actor, "policy_text.approve", versionID,
		map[string]any{"edited_ipr": editedIPR != nil}, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject retires a draft or pending_approval version without approving it,
// clearing the way for a fresh interpretation.
func (m *Manager) Reject(ctx context.Context, actor, versionID string) error {
	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		target, err := tx.PolicyTextVersion(versionID)
		if err != nil {
			return mapStoreErr(err, "policy text version")
		}
		if target.Status != truth.TextStatusPendingApproval && target.Status != truth.TextStatusDraft {
			return truth.NewFailure(truth.CodeInvalidInput,
				"version %d is %s and cannot be rejected", target.Version, target.Status)
		}
		return tx.SetPolicyTextStatus(target.ID, truth.TextStatusDeprecated)
	})

	m.audit(actor, "policy_text.reject", versionID, nil, err)
	return err
}

// DeprecatePolicyText retires an approved version explicitly.
func (m *Manager) DeprecatePolicyText(ctx context.Context, actor, versionID string) error {
	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		if _, err := tx.PolicyTextVersion(versionID); err != nil {
			return mapStoreErr(err, "policy text version")
		}
		return tx.SetPolicyTextStatus(versionID, truth.TextStatusDeprecated)
	})

	m.audit(actor, "policy_text.deprecate", versionID, nil, err)
	return err
}

func nextTextVersion(existing []*truth.PolicyTextVersion) int {
	next := 1
	for _, v := range existing {
		if v.Version >= next {
			next = v.Version + 1
		}
	}
	return next
}
