package sgmlreader

import "go.uber.org/zap"

// zapLogger adapts a *zap.SugaredLogger to the Logger interface, giving
// this package a structured, leveled default diagnostic sink instead of
// inventing a bespoke logging format. go.uber.org/zap is already part of
// the retrieval pack (foxcpp/maddy's config parser logs through it), so it
// is wired here rather than a hand-rolled stdlib logger.
type zapLogger struct {
	log *zap.SugaredLogger
}

// NewZapLogger wraps log as a Logger. Passing nil uses zap's default
// production logger.
func NewZapLogger(log *zap.Logger) Logger {
	if log == nil {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		log = l
	}
	return &zapLogger{log: log.Sugar()}
}

func (z *zapLogger) Log(d Diagnostic) {
	z.log.Warnw(d.Message,
		"entity", d.Entity,
		"uri", d.URI,
		"line", d.Line,
		"col", d.Column,
	)
}
