package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"truthcore-hq/atlas/pkg/telemetry/logging"
	"truthcore-hq/atlas/pkg/truth"
)

// writeJSON writes a success envelope. The payload map is merged into
// the envelope alongside "success": true.
func writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes the failure envelope for err. Expected failures keep
// their code and context; anything else is masked as INTERNAL.
func writeError(w http.ResponseWriter, err error) {
	failure, ok := truth.AsFailure(err)
	if !ok {
		failure = truth.NewFailure(truth.CodeInternal, "an internal error occurred")
	}

	body := map[string]any{
		"success": false,
		"error":   failure.Code,
		"message": failure.Message,
	}
	for k, v := range failure.Context {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(failure.HTTPStatus())
	_ = json.NewEncoder(w).Encode(body)
}

// requireActor returns the actor from the request context, or writes a
// MISSING_ACTOR failure and returns false.
func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor := logging.GetActor(r.Context())
	if actor == "" {
		writeError(w, truth.NewFailure(truth.CodeMissingActor,
			"write operations require an X-Actor header"))
		return "", false
	}
	return actor, true
}

// decodeBody decodes the JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, truth.NewFailure(truth.CodeInvalidInput,
			"invalid request body: %v", err))
		return false
	}
	return true
}

// decodeOptionalBody decodes the JSON request body into dst, treating an
// empty body as valid. ContentLength is not consulted: chunked requests
// report -1 and must still be read.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, truth.NewFailure(truth.CodeInvalidInput,
			"invalid request body: %v", err))
		return false
	}
	return true
}
