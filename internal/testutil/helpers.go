// Package testutil provides a mock vManage controller for tests.
package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Default credentials and session values used by the mock controller.
const (
	MockUsername = "admin"
	MockPassword = "admin"
	MockCookie   = "JSESSIONID=AbCdEf0123456789"
	MockToken    = "F00DFACE12345678"
)

// MockController is a TLS test server that speaks the vManage authentication
// handshake and serves canned JSON bodies per dataservice path.
//
// Paths in Responses are relative to /dataservice (e.g. "/device"). Every
// dataservice request is checked for the session cookie and CSRF token so
// tests exercising accessors also verify header propagation.
type MockController struct {
	Server *httptest.Server

	// Responses maps dataservice paths to raw JSON bodies served with 200.
	Responses map[string]string

	// Statuses optionally overrides the HTTP status for a dataservice path.
	Statuses map[string]int

	// RejectLogin makes the login endpoint answer with an HTML error page
	// (status 200), as real controllers do on bad credentials.
	RejectLogin bool
}

// NewMockController starts a TLS mock controller. The server is closed
// automatically when the test finishes.
func NewMockController(t *testing.T, responses map[string]string) *MockController {
	t.Helper()

	mc := &MockController{
		Responses: responses,
		Statuses:  map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/j_security_check", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())

		if mc.RejectLogin ||
			r.PostForm.Get("j_username") != MockUsername ||
			r.PostForm.Get("j_password") != MockPassword {
			// Real controllers return an HTML login page with status 200.
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<html><body>Invalid credentials</body></html>"))
			return
		}

		w.Header().Set("Set-Cookie", MockCookie+"; Path=/; HttpOnly; Secure")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/dataservice/client/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, MockCookie, r.Header.Get("Cookie"), "token fetch should carry the session cookie")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(MockToken))
	})
	mux.HandleFunc("/dataservice/", func(w http.ResponseWriter, r *http.Request) {
		RequireSessionHeaders(t, r)

		path := r.URL.Path[len("/dataservice"):]
		if status, ok := mc.Statuses[path]; ok {
			w.WriteHeader(status)
			return
		}

		body, ok := mc.Responses[path]
		if !ok {
			t.Errorf("unexpected dataservice path: %s", path)
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(body))
		require.NoError(t, err, "Failed to write response body")
	})

	mc.Server = httptest.NewTLSServer(mux)
	t.Cleanup(mc.Server.Close)

	return mc
}

// HostPort returns the mock controller's host and port for client configs.
func (mc *MockController) HostPort(t *testing.T) (string, int) {
	t.Helper()

	host, portStr, err := net.SplitHostPort(mc.Server.Listener.Addr().String())
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return host, port
}

// RequireSessionHeaders asserts that a request carries the authenticated
// session header set.
func RequireSessionHeaders(t *testing.T, r *http.Request) {
	t.Helper()

	assert.Equal(t, MockCookie, r.Header.Get("Cookie"), "session cookie should be set")
	assert.Equal(t, MockToken, r.Header.Get("X-XSRF-TOKEN"), "CSRF token should be set")
	assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
}

// Envelope wraps a raw JSON array in the controller's response envelope.
func Envelope(data string) string {
	return `{"data":` + data + `}`
}
