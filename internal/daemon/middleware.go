package daemon

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware tags every request with an identifier and logs it so API
// log lines can be correlated with client reports. A client-supplied ID is kept.
func requestIDMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		logger.Debug("api request",
			logging.String(logging.FieldRequestID, id),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}
