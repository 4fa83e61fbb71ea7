package core

// DenyReason tags why a join attempt produced no URL.
type DenyReason string

const (
	DenyAccess       DenyReason = "access_denied"
	DenyCannotCreate DenyReason = "cannot_create"
	DenyNotRunning   DenyReason = "not_running"
	DenyRemoteError  DenyReason = "remote_error"
)

// JoinResult is the outcome of a join attempt: a redirect URL, or a
// classified denial with a user-safe message.
type JoinResult struct {
	URL     string
	Denied  bool
	Reason  DenyReason
	Message string
}

func Redirect(url string) JoinResult {
	return JoinResult{URL: url}
}

func Denied(reason DenyReason, message string) JoinResult {
	return JoinResult{Denied: true, Reason: reason, Message: message}
}
