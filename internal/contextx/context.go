package contextx

// Key is a private type to avoid collisions in request context keys.
type Key string

// UserIDKey is the context key used to store the authenticated user's ID (string).
const UserIDKey Key = "userID"

// SessionTokenKey is the context key used to store the current session token (string).
const SessionTokenKey Key = "sessionToken"
