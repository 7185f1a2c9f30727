package middleware

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/careconnect/scheduler/pkg/logging"
)

// Idempotency guards POST endpoints against duplicate submissions. When a
// request carries an Idempotency-Key header, the key is claimed in Redis
// for the configured TTL; a second request with the same key is rejected
// with 409 before it reaches the handler. A claim only sticks when the
// guarded request succeeds: on a non-2xx response the key is released so a
// corrected resubmission can reuse it. Requests without the header pass
// through untouched, and Redis being unavailable fails open; booking
// retries are already safe because a failed booking commits nothing.
func Idempotency(client *redis.Client, ttl time.Duration, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if client == nil || key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			redisKey := "idempotency:" + key
			claimed, err := client.SetNX(r.Context(), redisKey, "1", ttl).Result()
			if err != nil {
				logger.Error("idempotency check failed, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !claimed {
				http.Error(w, "duplicate request", http.StatusConflict)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusMultipleChoices {
				if err := client.Del(r.Context(), redisKey).Err(); err != nil {
					logger.Error("failed to release idempotency key", "error", err, "key", key)
				}
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
