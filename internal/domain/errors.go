package domain

import "errors"

// Error taxonomy shared across services. Adapter and resolution failures
// are returned as (or wrapped around) these sentinels so callers can
// pattern-match instead of inspecting strings.
var (
	// ErrNotResolved means an identifier (phone number, assistant id,
	// call id) did not map to an owner. Terminal, not retryable; callers
	// degrade to a safe default action.
	ErrNotResolved = errors.New("identifier did not resolve to an owner")

	// ErrNoAssistant means an operation required a provisioned assistant
	// and the user has none.
	ErrNoAssistant = errors.New("no assistant provisioned for user")

	// ErrProvisioning means the remote provider rejected an assistant or
	// phone-number create/update.
	ErrProvisioning = errors.New("remote provisioning failed")

	// ErrUpstream means a transient transport or non-2xx failure from an
	// external provider; the operation did not complete.
	ErrUpstream = errors.New("upstream provider unavailable")
)
