package endpoints

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/miguelmarques1/church-web/pkg/audit"
	"github.com/miguelmarques1/church-web/pkg/authn"
	"github.com/miguelmarques1/church-web/pkg/permission"
	"github.com/miguelmarques1/church-web/pkg/policy"
	"github.com/miguelmarques1/church-web/pkg/server"
	"github.com/miguelmarques1/church-web/pkg/server/store"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type testServer struct {
	*server.Server
	users    *MockUsersStore
	policies *MockPolicyStore
	health   *MockHealthStore
	auditLog *bytes.Buffer
	loadedAt time.Time
}

// newTestServer builds a server over the default policy with mocked stores.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		users:    &MockUsersStore{},
		policies: &MockPolicyStore{},
		health:   &MockHealthStore{},
		auditLog: &bytes.Buffer{},
		loadedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	holder := policy.NewHolder(&policy.Snapshot{
		Service:  permission.NewService(permission.DefaultTable(), permission.DefaultPages()),
		Source:   "default",
		SHA256:   "abc123",
		Version:  3,
		LoadedAt: ts.loadedAt,
	})

	ts.Server = server.NewServer(holder, authn.New(ts.users, testKey), nil, "127.0.0.1", "0",
		server.WithAccessLog(io.Discard),
		server.WithAuditLogger(audit.NewLogger(audit.WithWriter(ts.auditLog))),
	)
	ts.UsersStore = ts.users
	ts.PolicyStore = ts.policies
	ts.HealthStore = ts.health

	RegisterAll(ts.Server)
	return ts
}

// token issues a session token for a user holding role.
func (ts *testServer) token(t *testing.T, role string) string {
	t.Helper()
	session, err := ts.Authenticator.Issue(&store.User{ID: 42, Name: "Maria", Role: role})
	require.NoError(t, err)
	return session.AccessToken
}

// do sends a request through the full handler chain. An empty role is sent
// anonymously.
func (ts *testServer) do(t *testing.T, method, target, role string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "192.168.1.1:4321"
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token(t, role))
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func hashPassword(t *testing.T, password string) []byte {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func withHeaders(req *http.Request, headers map[string]string) *http.Request {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func serve(ts *testServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func serveFunc(handler http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(method, target, nil))
	return rec
}
