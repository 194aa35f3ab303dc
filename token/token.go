// Package token decodes ProdFlow access tokens and computes their
// validation state. Tokens are parsed without signature verification:
// the client extracts claims for display and expiry checks only, and
// authorization decisions stay server-side.
package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/prodflow/prodflow-go/internal/utils"
)

// DefaultRefreshThreshold is the remaining lifetime below which a still
// valid access token should be proactively refreshed.
const DefaultRefreshThreshold = 5 * time.Minute

// User holds the identity claims embedded in an access token.
type User struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	TenantID   string   `json:"tenantId"`
	TenantCode string   `json:"tenantCode"`
	TenantName string   `json:"tenantName,omitempty"`
	Roles      []string `json:"roles"`
}

// Validation is the state of an access token at a point in time.
// It is recomputed on every call and never cached, since time advances
// between calls.
type Validation struct {
	IsValid      bool
	IsExpired    bool
	ExpiresIn    int64 // whole seconds remaining, clamped at zero
	NeedsRefresh bool
}

// Validate computes the validation state of raw at the instant now.
// An absent or structurally malformed token is indistinguishable from an
// expired one: {IsValid:false, IsExpired:true, ExpiresIn:0, NeedsRefresh:false}.
// Validate never returns an error.
func Validate(raw string, now time.Time, threshold time.Duration) Validation {
	unusable := Validation{IsExpired: true}

	if raw == "" {
		return unusable
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, claims); err != nil {
		return unusable
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return unusable
	}

	remaining := exp.Unix() - now.Unix()
	if remaining <= 0 {
		return unusable
	}

	return Validation{
		IsValid:      true,
		ExpiresIn:    remaining,
		NeedsRefresh: remaining <= int64(threshold/time.Second),
	}
}

// DecodeUser extracts the identity claims from raw into a User.
// Several backends name the same claim differently, so each field
// tolerates a list of aliases.
func DecodeUser(raw string) (*User, error) {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(err, "[DecodeUser] ParseUnverified")
	}

	return &User{
		ID:         firstString(claims, "user_id", "sub", "id"),
		Username:   firstString(claims, "username", "preferred_username", "name"),
		TenantID:   firstString(claims, "tenant_id", "tenantId"),
		TenantCode: firstString(claims, "code", "tenant_code", "tenantCode"),
		TenantName: firstString(claims, "tenant_name", "tenantName"),
		Roles:      stringSlice(claims, "roles", "authorities"),
	}, nil
}

func firstString(claims jwtlib.MapClaims, keys ...string) string {
	for _, key := range keys {
		if s, ok := claims[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringSlice(claims jwtlib.MapClaims, keys ...string) []string {
	for _, key := range keys {
		if arr, ok := claims[key].([]any); ok {
			return utils.ToStringSlice(arr)
		}
	}
	return []string{}
}
