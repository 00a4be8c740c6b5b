package truth

import (
	"fmt"
	"net/http"
)

// Code is a stable failure code. Codes are part of the external contract
// and never change shape between engine versions.
type Code string

const (
	// Not-Configured family: recoverable by configuration, never retried.
	CodeVerticalNotConfigured    Code = "VERTICAL_NOT_CONFIGURED"
	CodeSubVerticalNotConfigured Code = "SUB_VERTICAL_NOT_CONFIGURED"
	CodePersonaNotConfigured     Code = "PERSONA_NOT_CONFIGURED"

	// Scope violation: caller error.
	CodeRegionNotInScope Code = "REGION_NOT_IN_SCOPE"

	// Truth-incomplete: MVT missing, invalid, or not active. Carries a
	// blocker and, where applicable, a per-field presence report.
	CodeMVTIncomplete Code = "MVT_INCOMPLETE"

	// Policy-not-active: distinct from truth-incomplete; the policy may be
	// fully valid but simply not activated.
	CodePolicyNotActive Code = "POLICY_NOT_ACTIVE"

	// Validation and input errors.
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeImmutableField   Code = "IMMUTABLE_FIELD"
	CodeDuplicateKey     Code = "DUPLICATE_KEY"
	CodeNotFound         Code = "NOT_FOUND"
	CodeMissingActor     Code = "MISSING_ACTOR"
	CodeInvalidInput     Code = "INVALID_INPUT"

	// Policy-text lifecycle.
	CodeNoPolicyText                Code = "NO_POLICY_TEXT"
	CodePendingInterpretationExists Code = "PENDING_INTERPRETATION_EXISTS"
	CodeApprovalContractFailed      Code = "APPROVAL_CONTRACT_FAILED"
	CodeApprovalHashMismatch        Code = "APPROVAL_CONTRACT_HASH_MISMATCH"

	// Internal: unexpected store or logic failures.
	CodeInternal Code = "INTERNAL"
)

// Blocker identifies which MVT condition failed a resolve. Reported as
// context on MVT_INCOMPLETE failures.
type Blocker string

const (
	BlockerNoMVTVersion Blocker = "NO_MVT_VERSION"
	BlockerMVTNotActive Blocker = "MVT_NOT_ACTIVE"
	BlockerMVTInvalid   Blocker = "MVT_INVALID"
)

// Failure is a typed, expected failure. The resolver and version manager
// return *Failure for every expected condition; only genuinely unexpected
// errors (store unavailable, corrupt rows) flow as ordinary wrapped errors
// and surface as CodeInternal at the top level.
type Failure struct {
	Code    Code           `json:"error"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// With returns f with an added context key. It mutates and returns f so
// construction can chain.
func (f *Failure) With(key string, value any) *Failure {
	if f.Context == nil {
		f.Context = make(map[string]any)
	}
	f.Context[key] = value
	return f
}

// NewFailure constructs a failure with the given code and formatted message.
func NewFailure(code Code, format string, args ...any) *Failure {
	return &Failure{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// HTTPStatus maps a failure code to its HTTP status: 404 for
// not-configured conditions, 500 for internal, 400 for everything else
// (input, validation, scope, lifecycle, and contract failures).
func (f *Failure) HTTPStatus() int {
	switch f.Code {
	case CodeVerticalNotConfigured, CodeSubVerticalNotConfigured,
		CodePersonaNotConfigured, CodeNotFound:
		return http.StatusNotFound
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// AsFailure unwraps err into a *Failure if it is one.
func AsFailure(err error) (*Failure, bool) {
	f, ok := err.(*Failure)
	return f, ok
}

// MVTFieldReport is the per-field presence checklist attached to
// MVT_INCOMPLETE failures so an operator can see exactly what remains.
type MVTFieldReport struct {
	BuyerRole       bool `json:"buyer_role"`
	DecisionOwner   bool `json:"decision_owner"`
	AllowedSignals  int  `json:"allowed_signals"`
	KillRules       int  `json:"kill_rules"`
	GoldenScenarios int  `json:"golden_scenarios"`
	KillScenarios   int  `json:"kill_scenarios"`
}

// FieldReport builds the presence report for an MVT version.
func FieldReport(v *MVTVersion) MVTFieldReport {
	return MVTFieldReport{
		BuyerRole:       v.BuyerRole != "",
		DecisionOwner:   v.DecisionOwner != "",
		AllowedSignals:  len(v.Signals),
		KillRules:       len(v.KillRules),
		GoldenScenarios: len(v.Scenarios.Golden),
		KillScenarios:   len(v.Scenarios.Kill),
	}
}
