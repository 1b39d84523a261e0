package domain

import "time"

// Identity binds an external auth-provider subject to an internal user ID.
// Bindings are cached in Redis; a miss is not an error state.
type Identity struct {
	Subject    string    `json:"subject"`
	UserID     string    `json:"user_id"`
	ResolvedAt time.Time `json:"resolved_at"`
}

var ErrIdentityNotCached = NewError(ErrCodeNotFound, "identity not cached")
