package logger

import (
	"log/slog"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Machine records the state machine type name under the key "machine".
func Machine(name string) slog.Attr {
	return slog.String("machine", name)
}

// FromState records the state a transition starts from under the key "from".
func FromState(name string) slog.Attr {
	return slog.String("from", name)
}

// ToState records the target state of a transition under the key "to".
func ToState(name string) slog.Attr {
	return slog.String("to", name)
}

// Attribute records the governed entity attribute under the key "attribute".
func Attribute(name string) slog.Attr {
	return slog.String("attribute", name)
}

// RecordID records a persisted record identifier under the key "record_id".
// If id is nil, it returns an empty Attr.
func RecordID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("record_id", id)
}

// Driver records the storage driver name under the key "driver".
func Driver(name string) slog.Attr {
	return slog.String("driver", name)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
