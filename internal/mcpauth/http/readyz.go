package http

import (
	"net/http"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/store"
	"github.com/acacialabs/acacia/pkg/httpx"
	"github.com/acacialabs/acacia/pkg/jwtx"
)

// ReadyzHandler is the readiness probe. It checks the credential store and
// the signing configuration; either failing flips the response to 503.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	codec *jwtx.Codec,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		status := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if !codec.Ready() {
			checks.Signer = "error: no signing secret configured"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
