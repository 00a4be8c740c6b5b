package middleware

import (
	"net/http"
	"strings"

	"truthcore-hq/atlas/pkg/telemetry/logging"
)

// ActorHeader is the HTTP header naming the acting operator.
const ActorHeader = "X-Actor"

// Actor copies the X-Actor header into the request context. It never
// rejects a request itself; write handlers enforce presence so read
// endpoints stay anonymous.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := strings.TrimSpace(r.Header.Get(ActorHeader))
		if actor != "" {
			r = r.WithContext(logging.WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}
