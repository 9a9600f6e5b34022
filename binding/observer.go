package binding

import (
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/KOMKZ/go-yogan-binding/logger"
)

// Observer receives resolution events. Implementations must be safe for
// concurrent use and must not resolve bindings themselves.
type Observer interface {
	// Resolved one Resolve call finished (err is the normalized error)
	Resolved(t reflect.Type, kind Kind, d time.Duration, err error)
	// Compiled a lazy binding compiled its description
	Compiled(t reflect.Type, d time.Duration, err error)
	// ScopeLookup a scoped binding looked up its cache; hit means no construction by this call
	ScopeLookup(t reflect.Type, kind Kind, hit bool)
}

type multiObserver []Observer

// Observers fans events out to every non-nil observer
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiObserver) Resolved(t reflect.Type, kind Kind, d time.Duration, err error) {
	for _, o := range m {
		o.Resolved(t, kind, d, err)
	}
}

func (m multiObserver) Compiled(t reflect.Type, d time.Duration, err error) {
	for _, o := range m {
		o.Compiled(t, d, err)
	}
}

func (m multiObserver) ScopeLookup(t reflect.Type, kind Kind, hit bool) {
	for _, o := range m {
		o.ScopeLookup(t, kind, hit)
	}
}

// LogObserver writes events to a module logger.
// Failures are logged at warn level, everything else at debug.
type LogObserver struct {
	log *logger.CtxZapLogger
}

// NewLogObserver creates a log observer; a nil logger discards events
func NewLogObserver(log *logger.CtxZapLogger) *LogObserver {
	if log == nil {
		log = logger.Nop()
	}
	return &LogObserver{log: log}
}

// Resolved logs a resolution
func (o *LogObserver) Resolved(t reflect.Type, kind Kind, d time.Duration, err error) {
	if err != nil {
		o.log.Warn("binding resolution failed",
			zap.Stringer("type", t),
			zap.Stringer("kind", kind),
			zap.Duration("duration", d),
			zap.Error(err))
		return
	}
	o.log.Debug("binding resolved",
		zap.Stringer("type", t),
		zap.Stringer("kind", kind),
		zap.Duration("duration", d))
}

// Compiled logs a lazy compilation
func (o *LogObserver) Compiled(t reflect.Type, d time.Duration, err error) {
	if err != nil {
		o.log.Warn("binding compilation failed",
			zap.Stringer("type", t),
			zap.Duration("duration", d),
			zap.Error(err))
		return
	}
	o.log.Debug("binding compiled",
		zap.Stringer("type", t),
		zap.Duration("duration", d))
}

// ScopeLookup logs a scope cache lookup
func (o *LogObserver) ScopeLookup(t reflect.Type, kind Kind, hit bool) {
	o.log.Debug("scope lookup",
		zap.Stringer("type", t),
		zap.Stringer("kind", kind),
		zap.Bool("hit", hit))
}
