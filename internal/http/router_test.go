package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkaraca/userhub/internal/config"
	apphttp "github.com/mkaraca/userhub/internal/http"
	"github.com/mkaraca/userhub/internal/repo/memory"
)

func testConfig() config.Config {
	return config.Config{
		Env:       "test",
		Port:      0,
		JWTSecret: "test-secret-key",
		TokenTTL:  time.Hour,
	}
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return apphttp.NewRouter(logger, memory.NewUsersRepo(), nil, testConfig())
}

func doRequest(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	router := setupTestRouter(t)

	// register; short passwords are legal, only presence is validated

	w := doRequest(router, http.MethodPost, "/auth/register", `{"name":"A","email":"a@x.com","password":"p1"}`, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	// login with the same credentials

	w = doRequest(router, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"p1"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	mustReadJSON(t, w, &loginResp)

	if strings.TrimSpace(loginResp.Token) == "" {
		t.Fatalf("login returned empty token")
	}

	// profile with the issued token

	w = doRequest(router, http.MethodGet, "/users/profile", "", map[string]string{
		"Authorization": "Bearer " + loginResp.Token,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("profile: status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	body := w.Body.String()

	if !strings.Contains(body, `"name":"A"`) || !strings.Contains(body, `"email":"a@x.com"`) {
		t.Fatalf("profile body missing identity fields: %s", body)
	}

	if strings.Contains(strings.ToLower(body), "password") {
		t.Fatalf("profile body leaks password material: %s", body)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := setupTestRouter(t)

	body := `{"name":"A","email":"a@x.com","password":"p1p1p1p1"}`

	w := doRequest(router, http.MethodPost, "/auth/register", body, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("first register: status = %d, want %d", w.Code, http.StatusCreated)
	}

	w = doRequest(router, http.MethodPost, "/auth/register", body, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("second register: status = %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), "Email already in use") {
		t.Fatalf("conflict body = %s", w.Body.String())
	}
}

func TestLoginFailureModes(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/register", `{"name":"A","email":"a@x.com","password":"p1p1p1p1"}`, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", w.Code)
	}

	// wrong password

	w = doRequest(router, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"wrongwrong"}`, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong password: status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	// unknown account

	w = doRequest(router, http.MethodPost, "/auth/login", `{"email":"nobody@x.com","password":"p1p1p1p1"}`, nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown email: status = %d, want %d", w.Code, http.StatusNotFound)
	}

	// a lookup string that is not even email-shaped still hits the store
	// and comes back as a plain 404, not a validation error

	w = doRequest(router, http.MethodPost, "/auth/login", `{"email":"not-an-email","password":"p1p1p1p1"}`, nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("non-email lookup: status = %d, want %d, body=%s", w.Code, http.StatusNotFound, w.Body.String())
	}
}

func TestProtectedRouteRejections(t *testing.T) {
	router := setupTestRouter(t)

	// no Authorization header at all

	w := doRequest(router, http.MethodGet, "/users/profile", "", nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// garbage token

	w = doRequest(router, http.MethodGet, "/users/profile", "", map[string]string{
		"Authorization": "Bearer garbage",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("garbage token: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUsersCRUDFlow(t *testing.T) {
	router := setupTestRouter(t)

	// create without a password

	w := doRequest(router, http.MethodPost, "/users", `{"name":"B","email":"b@x.com","age":25}`, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var created struct {
		ID string `json:"id"`
	}
	mustReadJSON(t, w, &created)

	if created.ID == "" {
		t.Fatalf("create returned no id")
	}

	// list includes it

	w = doRequest(router, http.MethodGet, "/users", "", nil)

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), created.ID) {
		t.Fatalf("list: status = %d, body=%s", w.Code, w.Body.String())
	}

	// partial update keeps the stored email

	w = doRequest(router, http.MethodPut, "/users/"+created.ID, `{"name":"B2"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body=%s", w.Code, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), `"email":"b@x.com"`) {
		t.Fatalf("update dropped the stored email: %s", w.Body.String())
	}

	// delete, then get is a 404

	w = doRequest(router, http.MethodDelete, "/users/"+created.ID, "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, body=%s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/users/"+created.ID, "", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want %d", w.Code, http.StatusNotFound)
	}

	// deleting an id that never existed is also a 404

	w = doRequest(router, http.MethodDelete, "/users/never-existed", "", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("delete unknown: status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/healthz", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("healthz: status = %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/readyz", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("readyz: status = %d", w.Code)
	}
}

func TestRequireJSONOnWrites(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(`{"name":"A","email":"a@x.com","password":"p1p1p1p1"}`))
	// deliberately no Content-Type
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnsupportedMediaType)
	}
}
