package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/cmlabs-hris/hris-finalization-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/idempotency"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Idempotency replays the stored response of a POST retried with the same
// Idempotency-Key. It is a no-op when store is nil or the header is absent.
// Redis failures let the request through uncached. Only 2xx responses are
// stored; a rejected request runs again on retry.
func Idempotency(store *idempotency.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotency.HeaderKey)
			if store == nil || key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				response.FinalizeError(w, err)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			scope := CompanyIDFromContext(ctx) + ":" + r.URL.Path
			hash := idempotency.RequestHash(body)

			entry, err := store.Get(ctx, scope, key)
			if err != nil {
				slog.Warn("idempotency lookup failed, serving uncached", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if entry != nil {
				if entry.RequestHash != hash {
					response.FinalizeError(w, finalization.ErrIdempotencyKeyConflict)
					return
				}
				replay(w, entry)
				return
			}

			locked, err := store.Lock(ctx, scope, key)
			if err != nil {
				slog.Warn("idempotency lock failed, serving uncached", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !locked {
				response.FinalizeError(w, finalization.ErrIdempotencyInProgress)
				return
			}
			defer func() {
				if err := store.Unlock(context.WithoutCancel(ctx), scope, key); err != nil {
					slog.Warn("failed to release idempotency lock", "error", err)
				}
			}()

			var buf bytes.Buffer
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&buf)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status < http.StatusOK || status >= http.StatusMultipleChoices {
				return
			}

			err = store.Save(context.WithoutCancel(ctx), scope, key, idempotency.Entry{
				RequestHash: hash,
				StatusCode:  status,
				Body:        bytes.TrimSpace(buf.Bytes()),
			})
			if err != nil {
				slog.Warn("failed to store idempotent response", "error", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, entry *idempotency.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(idempotency.HeaderReplayed, "true")
	w.WriteHeader(entry.StatusCode)
	_, _ = w.Write(entry.Body)
}
