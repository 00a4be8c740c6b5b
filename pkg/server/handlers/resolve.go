package handlers

import (
	"net/http"
	"time"

	"truthcore-hq/atlas/pkg/truth"
)

// Resolve handles GET /v1/resolve. It answers the single runtime
// question: for this vertical, sub-vertical, and region, what exact
// configuration does the agent run on. A blocked resolution returns the
// failure envelope; no partial configuration ever leaves this handler.
func (a *API) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	verticalKey := q.Get("vertical")
	subVerticalKey := q.Get("subVertical")
	region := q.Get("region")

	start := time.Now()
	resolution, err := a.resolver.Resolve(r.Context(), verticalKey, subVerticalKey, region)
	duration := time.Since(start)

	if err != nil {
		outcome := string(truth.CodeInternal)
		if failure, ok := truth.AsFailure(err); ok {
			outcome = string(failure.Code)
			if failure.Code == truth.CodeMVTIncomplete {
				if blocker, ok := failure.Context["blocker"].(truth.Blocker); ok && a.collector != nil {
					a.collector.RecordBlocker(string(blocker))
				}
			}
		}
		if a.collector != nil {
			a.collector.RecordResolution(verticalKey, subVerticalKey, outcome, duration)
		}
		writeError(w, err)
		return
	}

	if a.collector != nil {
		a.collector.RecordResolution(verticalKey, subVerticalKey, "resolved", duration)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"vertical":        resolution.Vertical,
		"sub_vertical":    resolution.SubVertical,
		"region":          resolution.Region,
		"icp":             resolution.ICP,
		"allowed_signals": resolution.Signals,
		"kill_rules":      resolution.KillRules,
		"seed_scenarios":  resolution.Scenarios,
		"mvt_status":      resolution.MVTStatus,
		"persona":         resolution.Persona,
		"policy":          resolution.Policy,
	})
}
