package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go-doc-library/internal/model"
	"go-doc-library/pkg/apierror"
)

// Timeout bounds JSON endpoints. It buffers the response, so content routes
// use StreamingTimeout instead.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: apierror.CodeRequestTimeout, Message: "request timed out"},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
