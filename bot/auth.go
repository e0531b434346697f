package bot

// Auth decides which Telegram users reach the handlers. Updates from users
// that are not allowed are dropped before any handler runs; admin commands
// also require IsAdmin.
type Auth interface {
	// AddAllowedUser grants access to userID, failing if it already has it.
	AddAllowedUser(userID int64, alias string) error
	// RemoveAllowedUser revokes access and reports whether userID had it.
	RemoveAllowedUser(userID int64) bool
	IsAllowed(userID int64) bool
	IsAdmin(userID int64) bool
	// ListAllowedUsers returns the allowed user ids mapped to their aliases.
	ListAllowedUsers() map[int64]string
	ListAdmins() map[int64]string
}
