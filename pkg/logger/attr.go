package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// Role records a role name under the key "role".
func Role(role any) slog.Attr {
	if role == nil {
		return slog.Attr{}
	}
	return slog.Any("role", role)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
