package core

// Error codes for domain errors.
const (
	ErrCodeInvalidNickname    = "invalid_nickname"
	ErrCodeDuplicateNickname  = "duplicate_nickname"
	ErrCodeInvalidChannelName = "invalid_channel_name"
	ErrCodeNotInChannel       = "not_in_channel"
	ErrCodeNoChannel          = "no_channel"
	ErrCodeUnknownSession     = "unknown_session"
)

var (
	ErrInvalidNickname    = coreError(ErrCodeInvalidNickname, "Invalid nickname format")
	ErrDuplicateNickname  = coreError(ErrCodeDuplicateNickname, "Nickname already in use")
	ErrInvalidChannelName = coreError(ErrCodeInvalidChannelName, "Invalid channel name")
	ErrNotInChannel       = coreError(ErrCodeNotInChannel, "Not in that channel")
	ErrNoChannel          = coreError(ErrCodeNoChannel, "Not in any channel")
	ErrUnknownSession     = coreError(ErrCodeUnknownSession, "Unknown session")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// Is matches any CoreError carrying the same code.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	return ok && t.Code == e.Code
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
