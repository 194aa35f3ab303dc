// Package session owns the access/refresh token pair for a ProdFlow
// client: it decides whether the current access token is usable,
// refreshes it against the backend when needed, and performs HTTP calls
// with a guaranteed-valid token attached.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prodflow/prodflow-go/session/store"
	"github.com/prodflow/prodflow-go/token"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// refreshKey is the single singleflight key: at most one refresh call may
// be in flight at any instant, process-wide per manager.
const refreshKey = "refresh"

// Credentials are transient login inputs; they exist only for the
// duration of a Login call. The server validates them.
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	TenantCode string `json:"tenantCode"`
}

// LoginResponse is the token pair issued by POST /auth/login.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

// refreshResponse is the body of a successful POST /auth/refresh.
// RefreshToken is only present when the server rotated it; when absent
// the old refresh token remains in use.
type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Manager is the single source of truth for "is the caller currently
// authenticated, and with what identity". All persisted-state writes go
// through it; other components only read via its accessors.
type Manager struct {
	baseURL   string
	store     store.Store
	client    *http.Client
	log       zerolog.Logger
	nowTime   func() time.Time
	threshold time.Duration

	writeLock sync.Mutex
	refresh   singleflight.Group
}

// Option modifies a Manager instance.
type Option func(*Manager)

// WithNowTime sets the clock function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithHTTPClient replaces the default HTTP client. The client's timeout
// bounds how long a hung refresh can hold the in-flight guard.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		m.client = client
	}
}

// WithLogger sets the logger used for background refresh outcomes.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithRefreshThreshold overrides the proactive refresh window.
func WithRefreshThreshold(threshold time.Duration) Option {
	return func(m *Manager) {
		m.threshold = threshold
	}
}

// New creates a Manager talking to the auth endpoints under baseURL
// (e.g. "https://erp.example.com/api") and persisting state in s.
func New(baseURL string, s store.Store, options ...Option) *Manager {
	m := &Manager{
		baseURL:   baseURL,
		store:     s,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       zerolog.Nop(),
		nowTime:   time.Now,
		threshold: token.DefaultRefreshThreshold,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Login issues POST /auth/login with the given credentials. Non-success
// statuses are translated into the typed errors of this package. On
// success both tokens are persisted and the access token is decoded into
// the session user.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] marshal credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "[Login] new request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ServerErr, "[Login] request failed: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, InvalidCredentialsErr
	case resp.StatusCode == http.StatusLocked:
		return nil, AccountLockedErr
	case resp.StatusCode == http.StatusNotFound:
		return nil, TenantNotFoundErr
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.Wrapf(ServerErr, "[Login] status %d", resp.StatusCode)
	}

	var lr LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, errors.Wrap(err, "[Login] decode response")
	}

	user, err := token.DecodeUser(lr.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] decode access token")
	}

	if err := m.storeSession(lr.AccessToken, lr.RefreshToken, user); err != nil {
		return nil, errors.Wrap(err, "[Login] persist session")
	}

	m.log.Info().Str("username", user.Username).Str("tenant", user.TenantCode).Msg("logged in")
	return &lr, nil
}

// Logout deletes the persisted token pair, session user, and selected
// company. It never calls the network and is safe to call when nothing
// is stored.
func (m *Manager) Logout() error {
	m.writeLock.Lock()
	defer m.writeLock.Unlock()

	for _, key := range []string{store.AccessTokenKey, store.RefreshTokenKey, store.UserKey, store.SelectedCompanyKey} {
		if err := m.store.Delete(key); err != nil {
			return errors.Wrapf(err, "[Logout] delete %s", key)
		}
	}
	return nil
}

// Token returns the persisted access token, if any.
func (m *Manager) Token() (string, bool) {
	return m.store.Get(store.AccessTokenKey)
}

// RefreshToken returns the persisted refresh token, if any.
func (m *Manager) RefreshToken() (string, bool) {
	return m.store.Get(store.RefreshTokenKey)
}

// User returns the session user decoded at login/refresh time. Absence
// or a corrupt stored value both read as "no user".
func (m *Manager) User() (*token.User, bool) {
	raw, ok := m.store.Get(store.UserKey)
	if !ok {
		return nil, false
	}
	var user token.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}
	return &user, true
}

// SelectCompany persists the company scope attached to subsequent API
// calls. Cleared by Logout.
func (m *Manager) SelectCompany(companyID string) error {
	m.writeLock.Lock()
	defer m.writeLock.Unlock()
	return m.store.Set(store.SelectedCompanyKey, companyID)
}

// SelectedCompany returns the persisted company scope, if any.
func (m *Manager) SelectedCompany() (string, bool) {
	return m.store.Get(store.SelectedCompanyKey)
}

// Validate computes the current token's validation state from the stored
// access token and the current wall-clock time. It never errors: absent
// and malformed tokens both read as invalid/expired.
func (m *Manager) Validate() token.Validation {
	raw, _ := m.Token()
	return token.Validate(raw, m.nowTime(), m.threshold)
}

// IsAuthenticated reports whether the stored access token is currently
// valid.
func (m *Manager) IsAuthenticated() bool {
	return m.Validate().IsValid
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token. Concurrent callers collapse into a single network call and all
// observe its outcome; once the call settles, the in-flight marker is
// cleared so a later call starts fresh work.
//
// With no refresh token stored it returns NotAuthenticatedErr without
// touching the network. Any refresh failure is terminal: the session is
// cleared and the error wraps SessionExpiredErr.
func (m *Manager) RefreshAccessToken(ctx context.Context) (string, error) {
	result, err, _ := m.refresh.Do(refreshKey, func() (any, error) {
		return m.performRefresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (m *Manager) performRefresh(ctx context.Context) (string, error) {
	refreshToken, ok := m.RefreshToken()
	if !ok {
		return "", NotAuthenticatedErr
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/auth/refresh", http.NoBody)
	if err != nil {
		return "", m.expireSession(errors.Wrap(err, "new request"))
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", m.expireSession(errors.Wrap(err, "request failed"))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", m.expireSession(errors.Errorf("status %d", resp.StatusCode))
	}

	var rr refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return "", m.expireSession(errors.Wrap(err, "decode response"))
	}

	user, err := token.DecodeUser(rr.AccessToken)
	if err != nil {
		return "", m.expireSession(errors.Wrap(err, "decode access token"))
	}

	if err := m.storeSession(rr.AccessToken, rr.RefreshToken, user); err != nil {
		return "", m.expireSession(errors.Wrap(err, "persist session"))
	}

	m.log.Debug().Msg("access token refreshed")
	return rr.AccessToken, nil
}

// expireSession clears the persisted session after an unrecoverable
// refresh failure and folds the cause into a SessionExpiredErr.
func (m *Manager) expireSession(cause error) error {
	if err := m.Logout(); err != nil {
		m.log.Error().Err(err).Msg("failed to clear session after refresh failure")
	}
	return errors.Wrap(SessionExpiredErr, cause.Error())
}

// storeSession writes the new token pair and user. A rotated refresh
// token replaces the old one; an empty rotation keeps it.
func (m *Manager) storeSession(accessToken, refreshToken string, user *token.User) error {
	m.writeLock.Lock()
	defer m.writeLock.Unlock()

	if err := m.store.Set(store.AccessTokenKey, accessToken); err != nil {
		return err
	}
	if refreshToken != "" {
		if err := m.store.Set(store.RefreshTokenKey, refreshToken); err != nil {
			return err
		}
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return m.store.Set(store.UserKey, string(userJSON))
}

// EnsureValidToken returns an access token that is valid at this instant.
// An expired token triggers a blocking refresh; a token inside the
// proactive window is returned immediately while a refresh runs in the
// background, so the common case never waits on the network.
func (m *Manager) EnsureValidToken(ctx context.Context) (string, error) {
	validation := m.Validate()

	if !validation.IsValid {
		// Absent, malformed, or past expiry: only a refresh can help.
		// performRefresh reports NotAuthenticatedErr when there is
		// nothing to refresh from.
		return m.RefreshAccessToken(ctx)
	}

	if validation.NeedsRefresh {
		go func() {
			if _, err := m.RefreshAccessToken(context.WithoutCancel(ctx)); err != nil {
				m.log.Warn().Err(err).Msg("proactive token refresh failed")
			}
		}()
	}

	tok, _ := m.Token()
	return tok, nil
}

// Do performs an authenticated HTTP request. It fails with a typed error
// before any network call when no usable token is available. Caller
// headers are carried over, but Authorization is always this session's
// bearer token.
func (m *Manager) Do(ctx context.Context, method, url string, body io.Reader, header http.Header) (*http.Response, error) {
	tok, err := m.EnsureValidToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(err, "[Do] new request")
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	return m.client.Do(req)
}

// AuthHeaders returns a bearer Authorization header for the stored token,
// or an empty header set when no token is stored. No validation or
// refresh is performed.
func (m *Manager) AuthHeaders() http.Header {
	header := http.Header{}
	if tok, ok := m.Token(); ok {
		header.Set("Authorization", "Bearer "+tok)
	}
	return header
}
