package validator

import (
	"strings"

	"truthcore-hq/atlas/pkg/truth"
)

// ValidateIPR checks that a compiled IPR is well-formed: thresholds
// reference known fields and comparisons, and every target-role rule
// carries a non-empty title list. Semantic quality (confidence, role
// coverage) is the compiler's concern, not this function's.
func ValidateIPR(ipr *truth.IPR) Result {
	result := Result{Valid: true}

	if ipr == nil {
		result.add("IPR is required")
		return result
	}

	for i, th := range ipr.Thresholds {
		if !isKnownThresholdField(th.Field) {
			result.add("thresholds[%d]: unknown field %q (known: %s)",
				i, th.Field, strings.Join(truth.KnownThresholdFields, ", "))
		}
		switch th.Comparison {
		case truth.CompareGTE, truth.CompareLT:
		default:
			result.add("thresholds[%d]: unknown comparison %q (known: gte, lt)", i, th.Comparison)
		}
		if th.Value < 0 {
			result.add("thresholds[%d]: value must be non-negative, got %v", i, th.Value)
		}
	}

	for i, rule := range ipr.TargetRoles {
		switch rule.Size {
		case truth.SizeLarge, truth.SizeMid, truth.SizeSmall, truth.SizeUnknown:
		default:
			result.add("target_roles[%d]: unknown size context %q", i, rule.Size)
		}
		if len(rule.Titles) == 0 {
			result.add("target_roles[%d]: titles must be non-empty", i)
		}
		for j, title := range rule.Titles {
			if strings.TrimSpace(title) == "" {
				result.add("target_roles[%d].titles[%d]: title must be non-empty", i, j)
			}
		}
		if rule.MinHeadcount != nil && rule.MaxHeadcount != nil && *rule.MinHeadcount > *rule.MaxHeadcount {
			result.add("target_roles[%d]: min_headcount %d exceeds max_headcount %d",
				i, *rule.MinHeadcount, *rule.MaxHeadcount)
		}
	}

	return result
}

func isKnownThresholdField(field string) bool {
	for _, f := range truth.KnownThresholdFields {
		if field == f {
			return true
		}
	}
	return false
}
