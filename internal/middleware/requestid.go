package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/xid"
)

// maxRequestIDLen bounds an id accepted from the client.
const maxRequestIDLen = 64

// RequestID tags every request with an id, reusing a client-supplied
// X-Request-Id when it is short enough and generating an xid otherwise.
//
// The id is stored under chi's key, so chimiddleware.GetReqID and the Logger
// middleware read it unchanged. It is echoed back in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimiddleware.RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = xid.New().String()
		}

		w.Header().Set(chimiddleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
