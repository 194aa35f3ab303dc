package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/prodflow/prodflow-go/session"
	"github.com/prodflow/prodflow-go/session/store"
	"github.com/prodflow/prodflow-go/session/store/storefakes"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

const (
	testUsername   = "alice"
	testPassword   = "secret"
	testTenantCode = "ACME"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return raw
}

func userToken(t *testing.T, remaining time.Duration) string {
	t.Helper()
	return signedToken(t, jwtlib.MapClaims{
		"user_id":     "user-1",
		"username":    testUsername,
		"tenant_id":   "tenant-1",
		"code":        testTenantCode,
		"tenant_name": "Acme Manufacturing",
		"roles":       []any{"ADMIN"},
		"exp":         testNow.Add(remaining).Unix(),
	})
}

func newManager(baseURL string, s store.Store) *session.Manager {
	return session.New(baseURL, s,
		session.WithNowTime(func() time.Time { return testNow }),
		session.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
	)
}

func writeJSON(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

// seedSession primes the store as if a login had happened earlier.
func seedSession(t *testing.T, s store.Store, accessToken, refreshToken string) {
	t.Helper()
	require.NoError(t, s.Set(store.AccessTokenKey, accessToken))
	if refreshToken != "" {
		require.NoError(t, s.Set(store.RefreshTokenKey, refreshToken))
	}
	require.NoError(t, s.Set(store.UserKey, `{"id":"user-1","username":"alice","tenantId":"tenant-1","tenantCode":"ACME","roles":["ADMIN"]}`))
}

func TestLoginSuccess(t *testing.T) {
	accessToken := userToken(t, time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var creds session.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, testUsername, creds.Username)
		require.Equal(t, testPassword, creds.Password)
		require.Equal(t, testTenantCode, creds.TenantCode)

		writeJSON(t, w, session.LoginResponse{
			AccessToken:  accessToken,
			RefreshToken: "r1",
			TokenType:    "Bearer",
			ExpiresIn:    3600,
		})
	}))
	defer srv.Close()

	fs := storefakes.NewFakeStore()
	m := newManager(srv.URL, fs)

	resp, err := m.Login(context.Background(), session.Credentials{Username: testUsername, Password: testPassword, TenantCode: testTenantCode})
	require.NoError(t, err)
	require.Equal(t, accessToken, resp.AccessToken)

	user, ok := m.User()
	require.True(t, ok)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, testUsername, user.Username)
	require.Equal(t, "tenant-1", user.TenantID)
	require.Equal(t, testTenantCode, user.TenantCode)
	require.Equal(t, []string{"ADMIN"}, user.Roles)

	refreshToken, ok := m.RefreshToken()
	require.True(t, ok)
	require.Equal(t, "r1", refreshToken)

	require.True(t, m.IsAuthenticated())
}

func TestLoginFailureStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"invalid credentials", http.StatusUnauthorized, session.InvalidCredentialsErr},
		{"account locked", http.StatusLocked, session.AccountLockedErr},
		{"tenant not found", http.StatusNotFound, session.TenantNotFoundErr},
		{"server error", http.StatusInternalServerError, session.ServerErr},
		{"bad gateway", http.StatusBadGateway, session.ServerErr},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			fs := storefakes.NewFakeStore()
			m := newManager(srv.URL, fs)

			_, err := m.Login(context.Background(), session.Credentials{Username: testUsername, Password: "wrong", TenantCode: testTenantCode})
			require.ErrorIs(t, err, tc.wantErr)

			// Nothing may be persisted on a failed login.
			_, ok := m.Token()
			require.False(t, ok)
			require.Zero(t, fs.Len())
		})
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	fs := storefakes.NewFakeStore()
	m := newManager("http://unused", fs)

	// Logout with no session stored.
	require.NoError(t, m.Logout())

	seedSession(t, fs, userToken(t, time.Hour), "r1")
	require.NoError(t, m.SelectCompany("company-1"))

	require.NoError(t, m.Logout())
	require.NoError(t, m.Logout())

	_, ok := m.Token()
	require.False(t, ok)
	_, ok = m.RefreshToken()
	require.False(t, ok)
	_, ok = m.User()
	require.False(t, ok)
	_, ok = m.SelectedCompany()
	require.False(t, ok)
	require.Zero(t, fs.Len())
}

func TestMalformedStoredTokenTreatedAsAbsent(t *testing.T) {
	fs := storefakes.NewFakeStore()
	require.NoError(t, fs.Set(store.AccessTokenKey, "definitely.not-a-jwt"))

	m := newManager("http://unused", fs)

	v := m.Validate()
	require.False(t, v.IsValid)
	require.True(t, v.IsExpired)
	require.False(t, v.NeedsRefresh)
	require.Zero(t, v.ExpiresIn)
	require.False(t, m.IsAuthenticated())
}

func TestRefreshSingleFlight(t *testing.T) {
	newAccessToken := userToken(t, time.Hour)

	var refreshCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)
		require.Equal(t, "Bearer r1", r.Header.Get("Authorization"))
		refreshCalls.Add(1)
		time.Sleep(50 * time.Millisecond) // keep the call in flight while the others arrive
		writeJSON(t, w, map[string]string{"accessToken": newAccessToken})
	}))
	defer srv.Close()

	fs := storefakes.NewFakeStore()
	seedSession(t, fs, userToken(t, -time.Minute), "r1")
	m := newManager(srv.URL, fs)

	const callers = 10
	results := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.RefreshAccessToken(context.Background())
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, refreshCalls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, newAccessToken, results[i])
	}

	// A call after settlement starts fresh work.
	_, err := m.RefreshAccessToken(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, refreshCalls.Load())
}

func TestRefreshFailureClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	fs := storefakes.NewFakeStore()
	seedSession(t, fs, userToken(t, -time.Minute), "r1")
	m := newManager(srv.URL, fs)

	_, err := m.RefreshAccessToken(context.Background())
	require.ErrorIs(t, err, session.SessionExpiredErr)

	_, ok := m.Token()
	require.False(t, ok)
	_, ok = m.RefreshToken()
	require.False(t, ok)
	_, ok = m.User()
	require.False(t, ok)
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	fs := storefakes.NewFakeStore()
	m := newManager(srv.URL, fs)

	_, err := m.RefreshAccessToken(context.Background())
	require.ErrorIs(t, err, session.NotAuthenticatedErr)
	require.Zero(t, calls.Load())
}

func TestRefreshTokenRotation(t *testing.T) {
	newAccessToken := userToken(t, time.Hour)

	t.Run("rotated", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]string{"accessToken": newAccessToken, "refreshToken": "r2"})
		}))
		defer srv.Close()

		fs := storefakes.NewFakeStore()
		seedSession(t, fs, userToken(t, -time.Minute), "r1")
		m := newManager(srv.URL, fs)

		_, err := m.RefreshAccessToken(context.Background())
		require.NoError(t, err)

		refreshToken, ok := m.RefreshToken()
		require.True(t, ok)
		require.Equal(t, "r2", refreshToken)
	})

	t.Run("not rotated keeps old token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]string{"accessToken": newAccessToken})
		}))
		defer srv.Close()

		fs := storefakes.NewFakeStore()
		seedSession(t, fs, userToken(t, -time.Minute), "r1")
		m := newManager(srv.URL, fs)

		_, err := m.RefreshAccessToken(context.Background())
		require.NoError(t, err)

		refreshToken, ok := m.RefreshToken()
		require.True(t, ok)
		require.Equal(t, "r1", refreshToken)
	})
}

func TestEnsureValidTokenExpiredRefreshes(t *testing.T) {
	newAccessToken := userToken(t, time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]string{"accessToken": newAccessToken})
	}))
	defer srv.Close()

	fs := storefakes.NewFakeStore()
	seedSession(t, fs, userToken(t, -time.Minute), "r1")
	m := newManager(srv.URL, fs)

	tok, err := m.EnsureValidToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, newAccessToken, tok)
}

func TestEnsureValidTokenExpiredWithoutRefreshToken(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	fs := storefakes.NewFakeStore()
	require.NoError(t, fs.Set(store.AccessTokenKey, userToken(t, -time.Hour)))
	m := newManager(srv.URL, fs)

	_, err := m.EnsureValidToken(context.Background())
	require.ErrorIs(t, err, session.NotAuthenticatedErr)
	require.Zero(t, calls.Load())
}

func TestEnsureValidTokenDoesNotBlockOnProactiveRefresh(t *testing.T) {
	currentToken := userToken(t, 250*time.Second) // valid, inside the refresh window
	newAccessToken := userToken(t, time.Hour)

	release := make(chan struct{})
	var refreshCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		<-release // hold the refresh in flight
		writeJSON(t, w, map[string]string{"accessToken": newAccessToken})
	}))
	defer srv.Close()

	fs := storefakes.NewFakeStore()
	seedSession(t, fs, currentToken, "r1")
	m := newManager(srv.URL, fs)

	// Returns the still-valid token while the refresh is blocked.
	tok, err := m.EnsureValidToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, currentToken, tok)

	// Exactly one background refresh was triggered.
	require.Eventually(t, func() bool { return refreshCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	close(release)
	require.Eventually(t, func() bool {
		tok, _ := m.Token()
		return tok == newAccessToken
	}, time.Second, 5*time.Millisecond)
}

func TestConcurrentRequestsShareOneBackgroundRefresh(t *testing.T) {
	currentToken := userToken(t, 250*time.Second)
	newAccessToken := userToken(t, time.Hour)

	var refreshCalls, apiCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls.Add(1)
			time.Sleep(50 * time.Millisecond)
			writeJSON(t, w, map[string]string{"accessToken": newAccessToken})
		case "/orders":
			apiCalls.Add(1)
			require.Equal(t, "Bearer "+currentToken, r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	fs := storefakes.NewFakeStore()
	seedSession(t, fs, currentToken, "r1")
	m := newManager(srv.URL, fs)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := m.Do(context.Background(), http.MethodGet, srv.URL+"/orders", nil, nil)
			require.NoError(t, err)
			resp.Body.Close()
		}()
	}
	wg.Wait()

	require.EqualValues(t, 2, apiCalls.Load())
	require.Eventually(t, func() bool { return refreshCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// Give the background refresh time to settle, then confirm no extras.
	require.Eventually(t, func() bool {
		tok, _ := m.Token()
		return tok == newAccessToken
	}, time.Second, 5*time.Millisecond)
	require.EqualValues(t, 1, refreshCalls.Load())
}

func TestDoWithoutSessionFailsBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	m := newManager(srv.URL, storefakes.NewFakeStore())

	_, err := m.Do(context.Background(), http.MethodGet, srv.URL+"/orders", nil, nil)
	require.ErrorIs(t, err, session.NotAuthenticatedErr)
	require.Zero(t, calls.Load())
}

func TestDoMergesCallerHeaders(t *testing.T) {
	currentToken := userToken(t, time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer "+currentToken, r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "company-1", r.Header.Get("X-Company-ID"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fs := storefakes.NewFakeStore()
	seedSession(t, fs, currentToken, "r1")
	m := newManager(srv.URL, fs)

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("X-Company-ID", "company-1")
	// A caller-supplied Authorization header never wins over the session token.
	header.Set("Authorization", "Bearer stolen")

	resp, err := m.Do(context.Background(), http.MethodGet, srv.URL+"/orders", nil, header)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestAuthHeaders(t *testing.T) {
	fs := storefakes.NewFakeStore()
	m := newManager("http://unused", fs)

	require.Empty(t, m.AuthHeaders().Get("Authorization"))

	currentToken := userToken(t, time.Hour)
	seedSession(t, fs, currentToken, "")
	require.Equal(t, "Bearer "+currentToken, m.AuthHeaders().Get("Authorization"))
}

func TestTokenSource(t *testing.T) {
	currentToken := userToken(t, time.Hour)

	fs := storefakes.NewFakeStore()
	seedSession(t, fs, currentToken, "r1")
	m := newManager("http://unused", fs)

	tok, err := m.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	require.Equal(t, currentToken, tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
}

func TestNeverLoggedInVersusExpiredSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	// Never logged in.
	m := newManager(srv.URL, storefakes.NewFakeStore())
	_, err := m.EnsureValidToken(context.Background())
	require.ErrorIs(t, err, session.NotAuthenticatedErr)

	// Session existed but the refresh failed.
	fs := storefakes.NewFakeStore()
	seedSession(t, fs, userToken(t, -time.Minute), "r1")
	m = newManager(srv.URL, fs)
	_, err = m.EnsureValidToken(context.Background())
	require.ErrorIs(t, err, session.SessionExpiredErr)
}
