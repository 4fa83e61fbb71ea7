package app

import (
	"github.com/dkeye/roomgate/internal/domain"
)

// KeyPolicy is the default access policy: moderators may always start a
// session, attendees only when the room allows it.
type KeyPolicy struct{}

func (KeyPolicy) CanCreate(room *domain.Room, role domain.Role) bool {
	switch role {
	case domain.RoleModerator:
		return true
	case domain.RoleAttendee:
		return room.AnyoneCanStart
	}
	return false
}
