package core

import "fmt"

// RemoteKind is the closed classification of remote failures. The transport
// adapter decides the kind once; business logic branches on it and never
// inspects key strings.
type RemoteKind int

const (
	// RemoteOther covers every classified failure that is not a missing
	// resource, including responses with a blank error key.
	RemoteOther RemoteKind = iota
	RemoteNotFound
)

// RemoteError is a classified failure from the remote meeting API.
// Key is the machine token from the wire, kept for logging; Message is the
// human text, untrusted and unbounded until passed through UserMessage.
type RemoteError struct {
	Kind    RemoteKind
	Key     string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("remote: %s", e.Message)
	}
	return fmt.Sprintf("remote (%s): %s", e.Key, e.Message)
}

// ClassifyKey maps a wire error key to a RemoteKind. Blank keys are
// unclassified and treated as RemoteOther.
func ClassifyKey(key string) RemoteKind {
	if key == "notFound" {
		return RemoteNotFound
	}
	return RemoteOther
}

// maxUserMessage bounds remote error text before it reaches users or logs.
// The slice is inclusive of the boundary byte, so the result is at most
// maxUserMessage+1 characters long.
const maxUserMessage = 200

// UserMessage returns the remote message bounded for display.
func (e *RemoteError) UserMessage() string {
	return TruncateMessage(e.Message)
}

// TruncateMessage bounds an untrusted message for user display.
func TruncateMessage(s string) string {
	r := []rune(s)
	if len(r) <= maxUserMessage+1 {
		return s
	}
	return string(r[:maxUserMessage+1])
}
