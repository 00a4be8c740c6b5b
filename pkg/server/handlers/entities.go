package handlers

import (
	"net/http"

	"truthcore-hq/atlas/pkg/truth"
)

// CreateVertical handles POST /v1/verticals.
func (a *API) CreateVertical(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var body struct {
		Key         string   `json:"key"`
		Name        string   `json:"name"`
		RegionScope []string `json:"region_scope"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := a.manager.CreateVertical(r.Context(), actor, body.Key, body.Name, body.RegionScope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"vertical": created})
}

// CreateSubVertical handles POST /v1/verticals/{id}/sub-verticals.
func (a *API) CreateSubVertical(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var body struct {
		Key                string             `json:"key"`
		Name               string             `json:"name"`
		PrimaryEntityType  truth.EntityType   `json:"primary_entity_type"`
		RelatedEntityTypes []truth.EntityType `json:"related_entity_types"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := a.manager.CreateSubVertical(r.Context(), actor, r.PathValue("id"),
		body.Key, body.Name, body.PrimaryEntityType, body.RelatedEntityTypes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sub_vertical": created})
}

// CreatePersona handles POST /v1/sub-verticals/{id}/personas.
func (a *API) CreatePersona(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var persona truth.Persona
	if !decodeBody(w, r, &persona) {
		return
	}
	persona.SubVerticalID = r.PathValue("id")

	created, err := a.manager.CreatePersona(r.Context(), actor, &persona)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"persona": created})
}

// CreatePersonaPolicy handles POST /v1/personas/{id}/policies. New
// policies always start as drafts.
func (a *API) CreatePersonaPolicy(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var policy truth.PersonaPolicy
	if !decodeBody(w, r, &policy) {
		return
	}
	policy.PersonaID = r.PathValue("id")

	created, err := a.manager.CreatePersonaPolicy(r.Context(), actor, &policy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"policy": created})
}

// ActivatePersonaPolicy handles POST /v1/persona-policies/{id}/activate.
// Any currently active policy for the same persona is deprecated in the
// same atomic sequence.
func (a *API) ActivatePersonaPolicy(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := a.manager.ActivatePersonaPolicy(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
