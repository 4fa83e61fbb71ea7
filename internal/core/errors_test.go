package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateMessageBounds(t *testing.T) {
	assert.Len(t, []rune(TruncateMessage(strings.Repeat("a", 300))), 201)
	assert.Len(t, []rune(TruncateMessage(strings.Repeat("a", 500))), 201)

	short := strings.Repeat("b", 150)
	assert.Equal(t, short, TruncateMessage(short))

	exact := strings.Repeat("c", 201)
	assert.Equal(t, exact, TruncateMessage(exact))
}

func TestTruncateMessageCountsRunesNotBytes(t *testing.T) {
	msg := strings.Repeat("ü", 300)
	assert.Len(t, []rune(TruncateMessage(msg)), 201)
}

func TestClassifyKey(t *testing.T) {
	assert.Equal(t, RemoteNotFound, ClassifyKey("notFound"))
	assert.Equal(t, RemoteOther, ClassifyKey("anythingElse"))
	assert.Equal(t, RemoteOther, ClassifyKey(""))
}

func TestRemoteErrorUnwrapsWithAs(t *testing.T) {
	var re *RemoteError
	err := error(&RemoteError{Kind: RemoteNotFound, Key: "notFound", Message: "gone"})
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, RemoteNotFound, re.Kind)
	assert.Contains(t, re.Error(), "notFound")
}
