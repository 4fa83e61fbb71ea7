package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/roomgate/internal/domain"
)

func TestKeyPolicy(t *testing.T) {
	p := KeyPolicy{}
	open := &domain.Room{AnyoneCanStart: true}
	closed := &domain.Room{AnyoneCanStart: false}

	assert.True(t, p.CanCreate(closed, domain.RoleModerator))
	assert.True(t, p.CanCreate(open, domain.RoleAttendee))
	assert.False(t, p.CanCreate(closed, domain.RoleAttendee))
	assert.False(t, p.CanCreate(open, domain.Role("")))
}
