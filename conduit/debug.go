package conduit

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// debugLogger is the package-level zerolog logger for debug output.
var debugLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// logRequest logs one outgoing send cycle.
func logRequest(logger zerolog.Logger, req *http.Request, cycle int) {
	logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("cycle", cycle).
		Msg("conduit request")
}

// logResponse logs the transport result of one cycle.
func logResponse(logger zerolog.Logger, status, bodySize int, duration time.Duration) {
	logger.Debug().
		Int("status", status).
		Int("body_size", bodySize).
		Dur("duration_ms", duration).
		Msg("conduit response")
}

// logVerdict logs a decision's verdict.
func logVerdict(logger zerolog.Logger, d Decision, v Verdict) {
	logger.Debug().
		Str("decision", fmt.Sprintf("%T", d)).
		Str("decision_id", d.ID().String()).
		Str("verdict", v.String()).
		Msg("conduit verdict")
}
