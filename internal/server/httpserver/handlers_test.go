package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/insight/internal/logging"
	"github.com/dmitrijs2005/insight/internal/server/auth"
	"github.com/dmitrijs2005/insight/internal/server/users"
)

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()

	repo := users.NewInMemoryRepository()
	hasher := auth.NewBcryptHasher("test-secret")
	tokens, err := auth.NewJWTTokenService("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	service := users.NewService(repo, hasher, tokens)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return NewHTTPServer(":0", logger, service)
}

func registerUser(t *testing.T, s *HTTPServer, username, password, role string) {
	t.Helper()

	_, err := s.users.Register(context.Background(), username, username+"@example.com", 25, password, users.Role(role))
	require.NoError(t, err)
}

func doJSON(t *testing.T, s *HTTPServer, method, path, body string, modify ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range modify {
		m(req)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func withBasicAuth(username, password string) func(*http.Request) {
	return func(r *http.Request) { r.SetBasicAuth(username, password) }
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func issueToken(t *testing.T, s *HTTPServer, username, password string) string {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "token issuance failed: %s", w.Body.String())

	body := decodeBody(t, w)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "bearer", body["token_type"])
	return token
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestRegister_CreatedThenConflict(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	body := `{"username":"new_user","email":"user@example.com","age":30,"password":"supersecret123"}`

	w := doJSON(t, s, http.MethodPost, "/api/v1/users", body)
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, "new_user", resp["username"])
	assert.Equal(t, "user@example.com", resp["email"])
	assert.Equal(t, float64(30), resp["age"])
	assert.Equal(t, "user", resp["role"])
	assert.NotContains(t, w.Body.String(), "hashed_password")

	// second attempt with the same username, different case
	body = `{"username":"New_User","email":"other@example.com","age":31,"password":"supersecret123"}`
	w = doJSON(t, s, http.MethodPost, "/api/v1/users", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "user already exists", decodeBody(t, w)["detail"])
}

func TestRegister_ValidationErrors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"short password", `{"username":"u1","email":"u1@example.com","age":20,"password":"short"}`},
		{"bad email", `{"username":"u2","email":"not-an-email","age":20,"password":"supersecret123"}`},
		{"missing username", `{"email":"u3@example.com","age":20,"password":"supersecret123"}`},
		{"unknown role", `{"username":"u4","email":"u4@example.com","age":20,"password":"supersecret123","role":"root"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/v1/users", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "detail")
		})
	}
}

func TestCurrentUser_BasicAuth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	registerUser(t, s, "john_doe", "qwerty123", "user")

	w := doJSON(t, s, http.MethodGet, "/api/v1/users/me", "", withBasicAuth("John_Doe", "qwerty123"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "john_doe", decodeBody(t, w)["username"])
}

func TestCurrentUser_UniformUnauthorized(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	registerUser(t, s, "john_doe", "qwerty123", "user")

	ghost := doJSON(t, s, http.MethodGet, "/api/v1/users/me", "", withBasicAuth("ghost", "anything"))
	wrong := doJSON(t, s, http.MethodGet, "/api/v1/users/me", "", withBasicAuth("john_doe", "wrong_password"))

	assert.Equal(t, http.StatusUnauthorized, ghost.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, ghost.Body.String(), wrong.Body.String(),
		"unknown user and wrong password must produce identical responses")
}

func TestCurrentUser_NoCredentials(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")
}

func TestIssueToken_BadCredentials(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	registerUser(t, s, "john_doe", "qwerty123", "user")

	form := url.Values{"username": {"john_doe"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "incorrect username or password", decodeBody(t, w)["detail"])
}

func TestAdmin_RoleGate(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	registerUser(t, s, "root", "supersecret123", "admin")
	registerUser(t, s, "joe", "supersecret123", "user")

	adminToken := issueToken(t, s, "root", "supersecret123")
	userToken := issueToken(t, s, "joe", "supersecret123")

	w := doJSON(t, s, http.MethodGet, "/api/v1/admin", "", withBearer(adminToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello admin root", decodeBody(t, w)["message"])

	w = doJSON(t, s, http.MethodGet, "/api/v1/admin", "", withBearer(userToken))
	assert.Equal(t, http.StatusForbidden, w.Code, "authenticated but not permitted must be 403, not 401")

	w = doJSON(t, s, http.MethodGet, "/api/v1/admin", "", withBearer("garbage.token.value"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsers_AdminOnly(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	registerUser(t, s, "root", "supersecret123", "admin")
	registerUser(t, s, "joe", "supersecret123", "user")

	token := issueToken(t, s, "root", "supersecret123")

	w := doJSON(t, s, http.MethodGet, "/api/v1/users", "", withBearer(token))
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "joe", list[0]["username"])
	assert.Equal(t, "root", list[1]["username"])
	assert.NotContains(t, w.Body.String(), "hashed_password")
}

// brokenStore simulates a lost database connection underneath the service.
type brokenStore struct {
	err error
}

func (s brokenStore) Add(context.Context, *users.InternalUser) error { return s.err }
func (s brokenStore) GetByUsername(context.Context, string) (*users.InternalUser, error) {
	return nil, s.err
}
func (s brokenStore) List(context.Context) ([]*users.InternalUser, error) { return nil, s.err }

func TestStoreFailure_GenericBodyDetailedLog(t *testing.T) {
	t.Parallel()

	buf := &syncBuffer{}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(buf, nil)))

	hasher := auth.NewBcryptHasher("test-secret")
	tokens, err := auth.NewJWTTokenService("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	storeErr := errors.New("error performing sql request: connection refused")
	service := users.NewService(brokenStore{err: storeErr}, hasher, tokens)
	s := NewHTTPServer(":0", logger, service)

	w := doJSON(t, s, http.MethodGet, "/api/v1/users/me", "", withBasicAuth("john_doe", "qwerty123"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), decodeBody(t, w)["detail"],
		"the response body must not leak store internals")

	out := buf.String()
	assert.Contains(t, out, "unexpected error")
	assert.Contains(t, out, "connection refused", "the cause must reach the error log")
}

func TestPredict(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	registerUser(t, s, "john_doe", "qwerty123", "user")

	w := doJSON(t, s, http.MethodPost, "/api/v1/predict",
		`{"age":42,"income":70000.0,"occupation":"engineer"}`,
		withBasicAuth("john_doe", "qwerty123"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "positive", decodeBody(t, w)["prediction"])

	w = doJSON(t, s, http.MethodPost, "/api/v1/predict",
		`{"age":18}`, withBasicAuth("john_doe", "qwerty123"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "negative", decodeBody(t, w)["prediction"])

	// prediction route is protected
	w = doJSON(t, s, http.MethodPost, "/api/v1/predict", `{"age":18}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
