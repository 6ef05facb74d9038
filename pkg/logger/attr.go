package logger

import (
	"fmt"
	"log/slog"
)

// Error returns an empty Attr for a nil error, which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Identity records whose namespace an operation touched. Guests log as "guest".
func Identity(id string) slog.Attr {
	if id == "" {
		return slog.String("identity", "guest")
	}
	return slog.String("identity", id)
}

func ProductID(id string) slog.Attr {
	return slog.String("product_id", id)
}

func Package(name string) slog.Attr {
	return slog.String("package", name)
}

func Plan(id string) slog.Attr {
	return slog.String("plan", id)
}

func Key(key string) slog.Attr {
	return slog.String("key", key)
}

// Remaining accepts anything with a String method, such as a quota limit.
func Remaining(v fmt.Stringer) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	return slog.String("remaining", v.String())
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Command(name string) slog.Attr {
	return slog.String("command", name)
}
