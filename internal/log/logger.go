package log

import "go.uber.org/zap"

// New builds the process logger. Debug selects the development encoder.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// ForSession scopes a logger to one conversation.
func ForSession(l *zap.Logger, sessionID string) *zap.Logger {
	return l.With(zap.String("session_id", sessionID))
}
