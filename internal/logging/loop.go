package logging

import "github.com/rs/zerolog"

// LoopLogger writes event loop diagnostics through zerolog. It satisfies
// dispatcher.Logger.
type LoopLogger struct {
	logger zerolog.Logger
}

// NewLoopLogger tags every entry with component=loop and, when sessionID is
// set, the session it belongs to.
func NewLoopLogger(logger zerolog.Logger, sessionID string) *LoopLogger {
	ctx := logger.With().Str("component", "loop")
	if sessionID != "" {
		ctx = ctx.Str("session", sessionID)
	}
	return &LoopLogger{logger: ctx.Logger()}
}

func (l *LoopLogger) Debug(msg string, keysAndValues ...any) {
	l.write(l.logger.Debug(), msg, keysAndValues)
}

func (l *LoopLogger) Info(msg string, keysAndValues ...any) {
	l.write(l.logger.Info(), msg, keysAndValues)
}

func (l *LoopLogger) Error(msg string, keysAndValues ...any) {
	l.write(l.logger.Error(), msg, keysAndValues)
}

// write adds string-keyed pairs to ev. Error values go through Err so they
// render as text; a dangling key or a non-string key is dropped.
func (l *LoopLogger) write(ev *zerolog.Event, msg string, kv []any) {
	if ev == nil {
		return
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if err, isErr := kv[i+1].(error); isErr {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}
