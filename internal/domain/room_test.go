package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultMeetingID(t *testing.T) {
	id := DefaultMeetingID("Weekly Sync")

	assert.True(t, strings.HasPrefix(id, "Weekly-Sync-"), id)
	assert.NotContains(t, id, " ")
	// name plus a fixed-width uuid suffix
	assert.Len(t, id, len("Weekly-Sync-")+8)

	// two rooms with the same name must not collide
	assert.NotEqual(t, id, DefaultMeetingID("Weekly Sync"))
}

func TestDefaultMeetingIDBlankNameFallsBackToUUID(t *testing.T) {
	assert.Len(t, DefaultMeetingID(""), 36)
	assert.Len(t, DefaultMeetingID("   "), 36)
}
