// Package store provides the durable client-side slots that hold session
// state between process runs.
package store

// Slot names. The session manager owns the first three; the selected
// company slot is written by callers but cleared on logout.
const (
	AccessTokenKey     = "auth_token"
	RefreshTokenKey    = "refresh_token"
	UserKey            = "auth_user"
	SelectedCompanyKey = "selected_company_id"
)

// Store is a named-slot string store. Get reports absence via its second
// return value; absence is a normal outcome, not an error.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}
