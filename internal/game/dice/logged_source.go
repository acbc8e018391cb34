package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
	label  string
}

// NewLoggedSource creates a Source that draws from src and logs each value to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger, label string) *LoggedSource {
	return &LoggedSource{src: src, logger: logger, label: label}
}

// Intn draws from the wrapped source and logs the result.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("random draw",
		zap.String("purpose", l.label),
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}
