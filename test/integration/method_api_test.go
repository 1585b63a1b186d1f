//go:build integration

package integration

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scoring-lab/project-scoring/internal/auth"
	corecfg "github.com/scoring-lab/project-scoring/internal/core/config"
	"github.com/scoring-lab/project-scoring/internal/dispatch"
	"github.com/scoring-lab/project-scoring/internal/interests"
	"github.com/scoring-lab/project-scoring/internal/scoring"
	"github.com/scoring-lab/project-scoring/internal/server"
	"github.com/scoring-lab/project-scoring/internal/storage"
)

// newTestServer wires the full stack the way cmd/scoring does, from default
// configuration, and serves it over httptest.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg, err := corecfg.Load("")
	require.NoError(t, err)

	cacheTTL, err := cfg.Store.CacheTTLDuration()
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	authenticator := auth.New(cfg.Auth.UserSalt, cfg.Auth.AdminSalt, cfg.Auth.AdminLogin)

	registry := dispatch.NewRegistry()
	registry.Register(scoring.MethodName, scoring.New(store, cacheTTL))
	registry.Register(interests.MethodName, interests.New(store))

	srv := server.New("127.0.0.1:0", "release")
	dispatch.NewService(registry, authenticator).RegisterRoutes(srv.Engine)

	ts := httptest.NewServer(srv.Engine)
	t.Cleanup(ts.Close)
	return ts
}

func userToken(account, login string) string {
	sum := sha512.Sum512([]byte(account + login + "Otus"))
	return hex.EncodeToString(sum[:])
}

func adminToken() string {
	sum := sha512.Sum512([]byte(time.Now().UTC().Format("20060102") + "42"))
	return hex.EncodeToString(sum[:])
}

func post(t *testing.T, ts *httptest.Server, payload map[string]any) (int, map[string]any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/method/", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp.StatusCode, decoded
}

func TestMethodAPI_EndToEnd(t *testing.T) {
	ts := newTestServer(t)

	// online_score for a regular caller.
	code, decoded := post(t, ts, map[string]any{
		"account": "horns&hoofs", "login": "h&f", "method": "online_score",
		"token": userToken("horns&hoofs", "h&f"),
		"arguments": map[string]any{
			"phone": "79175002040", "email": "stupnikov@otus.ru",
			"first_name": "Стансилав", "last_name": "Ступников",
		},
	})
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, http.StatusOK, decoded["code"])
	require.Equal(t, 2.0, decoded["response"].(map[string]any)["score"])

	// The privileged caller gets the fixed maximum. Uses the real clock, so
	// the token is derived the same way the authenticator derives it.
	code, decoded = post(t, ts, map[string]any{
		"account": "horns&hoofs", "login": "admin", "method": "online_score",
		"token":     adminToken(),
		"arguments": map[string]any{"phone": "79175002040", "email": "stupnikov@otus.ru"},
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(42), decoded["response"].(map[string]any)["score"])

	// clients_interests against the built-in seed data.
	code, decoded = post(t, ts, map[string]any{
		"account": "horns&hoofs", "login": "h&f", "method": "clients_interests",
		"token":     userToken("horns&hoofs", "h&f"),
		"arguments": map[string]any{"client_ids": []int{1, 2, 3, 4}, "date": "20.07.2017"},
	})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, decoded["response"].(map[string]any), 4)

	// Error surface.
	code, decoded = post(t, ts, map[string]any{
		"account": "horns&hoofs", "login": "h&f", "method": "online_score",
		"token": "broken", "arguments": map[string]any{},
	})
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "Forbidden", decoded["error"])
}

func TestOperationalEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), "scoring_http_requests_total")
}
