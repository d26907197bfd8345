package machine

import "github.com/vncman/core/internal/auth"

// CanRead reports whether a user may view a machine: admins see
// everything, shared machines are visible to all users, and owners see
// their own.
func CanRead(u *auth.User, m *Machine) bool {
	if u == nil || m == nil {
		return false
	}
	return u.IsAdmin || m.IsShared || m.OwnerID == u.ID
}

// CanWrite reports whether a user may modify or delete a machine.
// Sharing grants read access only; writes stay with the owner and admins.
func CanWrite(u *auth.User, m *Machine) bool {
	if u == nil || m == nil {
		return false
	}
	return u.IsAdmin || m.OwnerID == u.ID
}
