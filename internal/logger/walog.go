package logger

import (
	walog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"
)

// waLogger routes whatsmeow's printf-style logging into zap.
type waLogger struct {
	s *zap.SugaredLogger
}

// WhatsApp adapts l to the logger interface whatsmeow expects.
func WhatsApp(l *zap.Logger, module string) walog.Logger {
	return &waLogger{s: l.Named(module).Sugar()}
}

func (w *waLogger) Warnf(msg string, args ...interface{})  { w.s.Warnf(msg, args...) }
func (w *waLogger) Errorf(msg string, args ...interface{}) { w.s.Errorf(msg, args...) }
func (w *waLogger) Infof(msg string, args ...interface{})  { w.s.Infof(msg, args...) }
func (w *waLogger) Debugf(msg string, args ...interface{}) { w.s.Debugf(msg, args...) }

func (w *waLogger) Sub(module string) walog.Logger {
	return &waLogger{s: w.s.Named(module)}
}
