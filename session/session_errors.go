package session

import "errors"

var (
	// Login failures, mapped from the auth endpoint's status codes so UI
	// code never sees raw transport errors.
	InvalidCredentialsErr = errors.New("invalid credentials")
	AccountLockedErr      = errors.New("account locked, try again later")
	TenantNotFoundErr     = errors.New("tenant not found")
	ServerErr             = errors.New("server error")

	// NotAuthenticatedErr means there is no usable session: the caller
	// never logged in, or nothing is left to refresh from.
	NotAuthenticatedErr = errors.New("not authenticated")

	// SessionExpiredErr means a session existed but its refresh failed,
	// so the stored token pair has been cleared.
	SessionExpiredErr = errors.New("session expired")
)
