package util

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Logger fans messages out to the log functions attached to a context.
type Logger struct {
	fs []LogFunc
	sync.Mutex
}

type LogFunc func(lvl Lvl, msg string)
type Lvl int

const (
	DEBUG Lvl = iota
	INFO
	WARN
	ERROR
)

type loggerKey struct{}

func Debugf(ctx context.Context, tpl string, args ...any) { Printf(ctx, DEBUG, tpl, args...) }
func Infof(ctx context.Context, tpl string, args ...any)  { Printf(ctx, INFO, tpl, args...) }
func Warnf(ctx context.Context, tpl string, args ...any)  { Printf(ctx, WARN, tpl, args...) }
func Errorf(ctx context.Context, tpl string, args ...any) { Printf(ctx, ERROR, tpl, args...) }

// WithLogger attaches fs to the logger of ctx, creating one if ctx has none.
func WithLogger(ctx context.Context, fs ...LogFunc) context.Context {
	l, ok := GetLogger(ctx)
	if !ok {
		return context.WithValue(ctx, loggerKey{}, &Logger{fs: fs})
	}
	l.Lock()
	l.fs = append(l.fs, fs...)
	l.Unlock()
	return ctx
}

func GetLogger(ctx context.Context) (*Logger, bool) {
	l, ok := ctx.Value(loggerKey{}).(*Logger)
	return l, ok
}

func WithLvl(minLvl Lvl, f LogFunc) LogFunc {
	return func(lvl Lvl, msg string) {
		if lvl >= minLvl {
			f(lvl, msg)
		}
	}
}

// Writer returns a LogFunc writing one "15:04:05.000 LVL msg" line per message to w.
func Writer(w io.Writer) LogFunc {
	return func(lvl Lvl, msg string) {
		fmt.Fprintf(w, "%s %-5s %s\n", time.Now().Format("15:04:05.000"), lvl, strings.TrimRight(msg, "\n"))
	}
}

func Printf(ctx context.Context, lvl Lvl, tpl string, args ...any) {
	if l, ok := GetLogger(ctx); ok {
		l.Lock()
		defer l.Unlock()
		for _, f := range l.fs {
			f(lvl, fmt.Sprintf(tpl, args...))
		}
	}
}

func (l Lvl) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		panic(fmt.Errorf("bad lvl: %d", l))
	}
}

func ParseLvl(l string) (Lvl, error) {
	switch strings.ToUpper(l) {
	case "ERROR":
		return ERROR, nil
	case "WARN":
		return WARN, nil
	case "INFO":
		return INFO, nil
	case "DEBUG":
		return DEBUG, nil
	default:
		return DEBUG, fmt.Errorf("bad log level: %q", l)
	}
}
