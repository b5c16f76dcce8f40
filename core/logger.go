package core

// Logger is any service that can report messages.
// Args may carry errors, maps of extra data and the acting user.User.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Notifier is any service that can deliver a short text message to a mobile number.
type Notifier interface {
	// SendNotification sends the message without blocking the caller; delivery failures are logged, not returned.
	SendNotification(mobile, message string)
}
