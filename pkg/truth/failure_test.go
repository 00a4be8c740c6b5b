package truth

import (
	"net/http"
	"testing"
)

func TestFailureError(t *testing.T) {
	f := NewFailure(CodeMVTIncomplete, "sub-vertical %q has no active MVT version", "employee-banking")
	want := `MVT_INCOMPLETE: sub-vertical "employee-banking" has no active MVT version`
	if f.Error() != want {
		t.Errorf("Error() = %q, want %q", f.Error(), want)
	}
}

func TestFailureWith(t *testing.T) {
	f := NewFailure(CodeMVTIncomplete, "incomplete").
		With("blocker", BlockerNoMVTVersion).
		With("sub_vertical", "employee-banking")

	if f.Context["blocker"] != BlockerNoMVTVersion {
		t.Errorf("blocker = %v", f.Context["blocker"])
	}
	if f.Context["sub_vertical"] != "employee-banking" {
		t.Errorf("sub_vertical = %v", f.Context["sub_vertical"])
	}
}

func TestFailureHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeVerticalNotConfigured, http.StatusNotFound},
		{CodeSubVerticalNotConfigured, http.StatusNotFound},
		{CodePersonaNotConfigured, http.StatusNotFound},
		{CodeNotFound, http.StatusNotFound},
		{CodeInternal, http.StatusInternalServerError},
		{CodeRegionNotInScope, http.StatusBadRequest},
		{CodeMVTIncomplete, http.StatusBadRequest},
		{CodePolicyNotActive, http.StatusBadRequest},
		{CodeValidationFailed, http.StatusBadRequest},
		{CodeImmutableField, http.StatusBadRequest},
		{CodeApprovalHashMismatch, http.StatusBadRequest},
		{CodeMissingActor, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			f := NewFailure(tt.code, "x")
			if got := f.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAsFailure(t *testing.T) {
	f := NewFailure(CodeInvalidInput, "bad")
	if got, ok := AsFailure(f); !ok || got != f {
		t.Errorf("AsFailure(failure) = %v, %v", got, ok)
	}
	if _, ok := AsFailure(http.ErrServerClosed); ok {
		t.Error("AsFailure(plain error) = true, want false")
	}
}

func TestFieldReport(t *testing.T) {
	v := &MVTVersion{
		BuyerRole: "Head of HR",
		Signals:   []AllowedSignal{{SignalKey: "a"}},
		KillRules: []KillRule{{Rule: "x"}, {Rule: "y"}},
		Scenarios: SeedScenarios{Golden: []string{"g1", "g2"}},
	}
	r := FieldReport(v)
	if !r.BuyerRole || r.DecisionOwner {
		t.Errorf("report = %+v, want buyer_role present and decision_owner absent", r)
	}
	if r.AllowedSignals != 1 || r.KillRules != 2 || r.GoldenScenarios != 2 || r.KillScenarios != 0 {
		t.Errorf("counts = %+v", r)
	}
}

func TestVerticalInScope(t *testing.T) {
	v := &Vertical{RegionScope: []string{"UAE", "KSA"}}
	tests := []struct {
		region string
		want   bool
	}{
		{"UAE", true},
		{"KSA", true},
		{"EGY", false},
		{RegionGlobal, true},
	}
	for _, tt := range tests {
		if got := v.InScope(tt.region); got != tt.want {
			t.Errorf("InScope(%q) = %v, want %v", tt.region, got, tt.want)
		}
	}

	global := &Vertical{RegionScope: []string{RegionGlobal}}
	if !global.InScope("JPN") {
		t.Error("GLOBAL-scoped vertical should accept any region")
	}
}
