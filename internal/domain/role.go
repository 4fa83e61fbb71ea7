package domain

// Role is the join role a user resolved by presenting one of the room keys.
type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleModerator Role = "moderator"
)

// ResolveRole matches a supplied key against the room keys. Exact equality
// only; an empty key never matches. The second return reports whether a
// role could be resolved at all — false means access denied, decided here
// and nowhere else.
func ResolveRole(room *Room, key string) (Role, bool) {
	if key == "" {
		return "", false
	}
	switch key {
	case room.AttendeeKey:
		return RoleAttendee, true
	case room.ModeratorKey:
		return RoleModerator, true
	}
	return "", false
}
