package validator

import (
	"fmt"
	"strings"

	"truthcore-hq/atlas/pkg/truth"
)

// complianceKeywords is the fixed keyword set used to recognize a
// compliance-indicating kill-rule reason. Matching is case-insensitive
// substring containment.
var complianceKeywords = []string{
	"compliance",
	"regulatory",
	"legal",
	"aml",
	"kyc",
	"sanction",
}

// Result is the outcome of a validation pass.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// add records a violation and marks the result invalid.
func (r *Result) add(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ToFailure converts an invalid result into a VALIDATION_FAILED failure
// carrying the complete violation list. Returns nil for a valid result.
func (r Result) ToFailure() *truth.Failure {
	if r.Valid {
		return nil
	}
	return truth.NewFailure(truth.CodeValidationFailed,
		"candidate failed validation with %d error(s)", len(r.Errors)).
		With("errors", r.Errors)
}

// ValidateMVT checks an MVT candidate against the structural rules for the
// given primary entity type. It collects all violations. The same function
// runs on the create path and on the merge-then-validate update path.
func ValidateMVT(candidate *truth.MVTCandidate, primary truth.EntityType) Result {
	result := Result{Valid: true}

	if strings.TrimSpace(candidate.BuyerRole) == "" {
		result.add("buyer_role is required and must be non-empty")
	}
	if strings.TrimSpace(candidate.DecisionOwner) == "" {
		result.add("decision_owner is required and must be non-empty")
	}

	if len(candidate.Signals) == 0 {
		result.add("allowed_signals must contain at least one entry")
	}
	for i, sig := range candidate.Signals {
		if strings.TrimSpace(sig.SignalKey) == "" {
			result.add("allowed_signals[%d]: signal_key is required", i)
		}
		if sig.EntityType == "" {
			result.add("allowed_signals[%d]: entity_type is required", i)
		} else if sig.EntityType != primary {
			result.add("allowed_signals[%d]: entity_type %q does not match primary_entity_type %q",
				i, sig.EntityType, primary)
		}
		if strings.TrimSpace(sig.Justification) == "" {
			result.add("allowed_signals[%d]: justification is required", i)
		}
	}

	if len(candidate.KillRules) < 2 {
		result.add("Minimum 2 kill_rules required, got %d", len(candidate.KillRules))
	}
	hasCompliance := false
	for i, kr := range candidate.KillRules {
		if strings.TrimSpace(kr.Rule) == "" {
			result.add("kill_rules[%d]: rule is required", i)
		}
		if strings.TrimSpace(kr.Action) == "" {
			result.add("kill_rules[%d]: action is required", i)
		}
		if strings.TrimSpace(kr.Reason) == "" {
			result.add("kill_rules[%d]: reason is required", i)
		} else if reasonIndicatesCompliance(kr.Reason) {
			hasCompliance = true
		}
	}
	if len(candidate.KillRules) > 0 && !hasCompliance {
		result.add("at least one kill_rule reason must indicate a compliance/regulatory/legal concern (keywords: %s)",
			strings.Join(complianceKeywords, ", "))
	}

	if len(candidate.Scenarios.Golden) < 2 {
		result.add("seed_scenarios.golden requires at least 2 entries, got %d", len(candidate.Scenarios.Golden))
	}
	if len(candidate.Scenarios.Kill) < 2 {
		result.add("seed_scenarios.kill requires at least 2 entries, got %d", len(candidate.Scenarios.Kill))
	}

	return result
}

// reasonIndicatesCompliance reports whether the reason contains any
// compliance keyword, case-insensitively.
func reasonIndicatesCompliance(reason string) bool {
	lower := strings.ToLower(reason)
	for _, kw := range complianceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MergeCandidate overlays the fields set on partial onto the content of an
// existing version, producing the candidate that the update path
// validates. Unset fields keep the current version's values so a partial
// edit cannot silently drop required data.
func MergeCandidate(current *truth.MVTVersion, partial *truth.MVTCandidate) *truth.MVTCandidate {
	merged := &truth.MVTCandidate{
		BuyerRole:     current.BuyerRole,
		DecisionOwner: current.DecisionOwner,
		Signals:       current.Signals,
		KillRules:     current.KillRules,
		Scenarios:     current.Scenarios,
	}
	if partial.BuyerRole != "" {
		merged.BuyerRole = partial.BuyerRole
	}
	if partial.DecisionOwner != "" {
		merged.DecisionOwner = partial.DecisionOwner
	}
	if partial.Signals != nil {
		merged.Signals = partial.Signals
	}
	if partial.KillRules != nil {
		merged.KillRules = partial.KillRules
	}
	if partial.Scenarios.Golden != nil {
		merged.Scenarios.Golden = partial.Scenarios.Golden
	}
	if partial.Scenarios.Kill != nil {
		merged.Scenarios.Kill = partial.Scenarios.Kill
	}
	return merged
}
