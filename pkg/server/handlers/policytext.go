package handlers

import (
	"net/http"

	"truthcore-hq/atlas/pkg/truth"
)

func (a *API) recordText(action string, err error) {
	if a.collector == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	a.collector.RecordTextTransition(action, result)
}

// SavePolicySource handles PUT /v1/sub-verticals/{id}/policy-text. It
// stages raw source text on the sub-vertical; nothing is versioned
// until interpretation.
func (a *API) SavePolicySource(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var body struct {
		Format truth.SourceFormat `json:"format"`
		Text   string             `json:"text"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	err := a.manager.SavePolicySource(r.Context(), actor, r.PathValue("id"), body.Format, body.Text)
	a.recordText("save", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// InterpretPolicySource handles POST /v1/sub-verticals/{id}/policy-text/interpret.
// It snapshots the staged source into an immutable pending version with
// its compiled representation and source hash.
func (a *API) InterpretPolicySource(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	pending, err := a.manager.Interpret(r.Context(), actor, r.PathValue("id"))
	a.recordText("interpret", err)
	if err != nil {
		writeError(w, err)
		return
	}

	if a.collector != nil {
		a.collector.RecordCompilation(string(pending.SourceFormat), "success")
		if pending.SourceFormat == truth.SourceFormatText {
			a.collector.RecordConfidence(pending.Confidence)
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{"version": pending})
}

// ApprovePolicyText handles POST /v1/policy-text-versions/{id}/approve.
// The optional body carries a reviewer-edited IPR. DSL-sourced versions
// go through the approval contract; a contract failure approves
// nothing.
func (a *API) ApprovePolicyText(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var body struct {
		IPR *truth.IPR `json:"ipr,omitempty"`
	}
	if !decodeOptionalBody(w, r, &body) {
		return
	}

	result, err := a.manager.Approve(r.Context(), actor, r.PathValue("id"), body.IPR)
	a.recordText("approve", err)
	if err != nil {
		if a.collector != nil {
			if failure, ok := truth.AsFailure(err); ok {
				switch failure.Code {
				case truth.CodeApprovalContractFailed:
					a.collector.RecordContractFailure("lint_failed")
				case truth.CodeApprovalHashMismatch:
					a.collector.RecordContractFailure("hash_mismatch")
				}
			}
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"version":  result.Version,
		"warnings": result.Warnings,
	})
}

// RejectPolicyText handles POST /v1/policy-text-versions/{id}/reject.
func (a *API) RejectPolicyText(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	err := a.manager.Reject(r.Context(), actor, r.PathValue("id"))
	a.recordText("reject", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// DeprecatePolicyText handles POST /v1/policy-text-versions/{id}/deprecate.
func (a *API) DeprecatePolicyText(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	err := a.manager.DeprecatePolicyText(r.Context(), actor, r.PathValue("id"))
	a.recordText("deprecate", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
