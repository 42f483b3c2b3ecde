package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"go-doc-library/pkg/apierror"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}

			slog.Error("panic recovered",
				"method", r.Method,
				"path", r.URL.Path,
				"error", fmt.Sprintf("%v", recovered),
				"stack", string(debug.Stack()),
			)
			writeJSONError(w, http.StatusInternalServerError, apierror.CodeInternal, "Unexpected server error")
		}()

		next.ServeHTTP(w, r)
	})
}
