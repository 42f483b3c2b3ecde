//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"go-doc-library/internal/app"
	"go-doc-library/internal/config"
	"go-doc-library/internal/database"
)

const testSecret = "integration-test-secret"

// newServer starts the full application over HTTP. TEST_DATABASE_URL switches
// the catalog to Postgres; otherwise it is in memory.
func newServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	cfg := &config.Config{
		ServerPort:         "0",
		RequestTimeout:     10 * time.Second,
		ContentTimeout:     time.Minute,
		ContentIdleTimeout: 10 * time.Second,
		ShutdownTimeout:    time.Second,
		JWTSecret:          testSecret,
		CORSOrigins:        []string{"*"},
		StorageBackend:     "local",
		UploadDir:          t.TempDir(),
		MaxFileSizeMB:      10,
		MaxImageSizeMB:     5,
		AllowedExtensions:  []string{"pdf"},
		MetricsEnabled:     true,
		DBMaxConns:         4,
	}

	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
		resetCatalog(t, url)
	}

	application, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)

	return server, signToken(t, "admin-1", "admin")
}

func resetCatalog(t *testing.T, url string) {
	t.Helper()

	ctx := context.Background()
	db, err := database.New(ctx, database.PoolConfig{URL: url, MaxConns: 2})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, "TRUNCATE document_versions, audit_entries")
	require.NoError(t, err)
}

func signToken(t *testing.T, subject string, role string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"typ":  "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func mustNewRequest(t *testing.T, method string, url string, body io.Reader, accessToken string) *http.Request {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return req
}

func doRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func doAuthRequest(t *testing.T, method string, url string, accessToken string) *http.Response {
	t.Helper()

	return doRequest(t, mustNewRequest(t, method, url, nil, accessToken))
}

func uploadFile(t *testing.T, serverURL string, category string, filename string, content []byte, accessToken string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := mustNewRequest(t, http.MethodPost, serverURL+"/api/v1/categories/"+category+"/versions", &body, accessToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return doRequest(t, req)
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total          int  `json:"total"`
		IncludeDeleted bool `json:"include_deleted"`
	} `json:"meta"`
}

func decode[T any](t *testing.T, resp *http.Response) envelope[T] {
	t.Helper()

	var body envelope[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}
