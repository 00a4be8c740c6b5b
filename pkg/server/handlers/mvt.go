package handlers

import (
	"net/http"

	"truthcore-hq/atlas/pkg/truth"
	"truthcore-hq/atlas/pkg/truth/version"
)

func (a *API) recordMVT(action string, err error) {
	if a.collector == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	a.collector.RecordMVTTransition(action, result)
}

// CreateMVTVersion handles POST /v1/sub-verticals/{id}/mvt-versions.
// The body is the full candidate; validation failures report every
// violation at once and create no row.
func (a *API) CreateMVTVersion(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var candidate truth.MVTCandidate
	if !decodeBody(w, r, &candidate) {
		return
	}

	created, err := a.manager.CreateVersion(r.Context(), actor, r.PathValue("id"), &candidate)
	a.recordMVT("create", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"version": created})
}

// UpdateMVTVersion handles PATCH /v1/sub-verticals/{id}/mvt. The body is
// a partial candidate merged over the active version's content and fully
// re-validated; a valid merge mints the next version.
func (a *API) UpdateMVTVersion(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var partial truth.MVTCandidate
	if !decodeBody(w, r, &partial) {
		return
	}

	created, err := a.manager.UpdateVersion(r.Context(), actor, r.PathValue("id"), &partial)
	a.recordMVT("update_version", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"version": created})
}

// ActivateMVTVersion handles POST /v1/mvt-versions/{id}/activate.
func (a *API) ActivateMVTVersion(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	activated, err := a.manager.Activate(r.Context(), actor, r.PathValue("id"))
	a.recordMVT("activate", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"version": activated})
}

// DeprecateMVTVersion handles POST /v1/mvt-versions/{id}/deprecate.
func (a *API) DeprecateMVTVersion(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	err := a.manager.Deprecate(r.Context(), actor, r.PathValue("id"))
	a.recordMVT("deprecate", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// UpdateICP handles PATCH /v1/sub-verticals/{id}/icp. Only ICP fields
// are touched; any attempt to change the primary entity type is
// rejected as an immutable-field violation.
func (a *API) UpdateICP(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var update version.ICPUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	err := a.manager.UpdateICP(r.Context(), actor, r.PathValue("id"), update)
	a.recordMVT("update_icp", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
