// Package notify delivers fire-and-forget user notices. Delivery never
// affects core state: implementations swallow their own failures.
package notify

import "log/slog"

// Kind classifies a notice.
type Kind string

const (
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notifier surfaces a notice to the user.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Nop discards every notice.
type Nop struct{}

func (Nop) Notify(Kind, string) {}

// Slog writes notices to a structured logger.
type Slog struct {
	Logger *slog.Logger
}

func NewSlog(logger *slog.Logger) Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return Slog{Logger: logger}
}

func (n Slog) Notify(kind Kind, message string) {
	switch kind {
	case KindError:
		n.Logger.Error(message, "notice", string(kind))
	case KindWarning:
		n.Logger.Warn(message, "notice", string(kind))
	default:
		n.Logger.Info(message, "notice", string(kind))
	}
}

// Fanout forwards each notice to every notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(kind Kind, message string) {
	for _, n := range f {
		n.Notify(kind, message)
	}
}
