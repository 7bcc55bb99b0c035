package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/room"
	"github.com/mcoot/brettonwoods/internal/testutil"
)

type fakeAuth map[string]room.Actor

func (f fakeAuth) Authenticate(token string) (room.Actor, error) {
	if a, ok := f[token]; ok {
		return a, nil
	}
	return room.Actor{}, model.ErrInvalidSession
}

var alice = room.Actor{PlayerID: "p1", Username: "alice", Role: model.RolePlayer}

func echoActor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a, ok := GetActor(r.Context()); ok {
			_, _ = w.Write([]byte(a.Username))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})
}

func TestAuth(t *testing.T) {
	h := Auth(fakeAuth{"tok": alice})(echoActor())

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok") }, http.StatusOK, "alice"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session", Value: "tok"}) }, http.StatusOK, "alice"},
		{"query", func(r *http.Request) { r.URL.RawQuery = "token=tok" }, http.StatusOK, "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rr.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(fakeAuth{"tok": alice})(echoActor())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "anonymous", rr.Body.String())
}

func TestRecovery(t *testing.T) {
	h := Recovery(testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_ERROR")
}

func TestLoggingCapturesStatus(t *testing.T) {
	var captured *ResponseWriter
	logger, logs := testutil.BufferLogger()
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*ResponseWriter)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, captured.status)
	assert.Equal(t, 15, captured.size)
	assert.Contains(t, logs.String(), `"status":418`)
	assert.Contains(t, logs.String(), `"level":"INFO"`)
}

func TestLoggingServerErrorsAtErrorLevel(t *testing.T) {
	logger, logs := testutil.BufferLogger()
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/rooms", nil))
	assert.Contains(t, logs.String(), `"level":"ERROR"`)
	assert.Contains(t, logs.String(), `"path":"/api/v1/rooms"`)
}
