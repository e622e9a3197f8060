package framework

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal logging interface used for debug output. A *log.Logger satisfies it.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger keeps every message in memory so it can be shown later, for instance only if
// the check that produced it failed.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

// Dump writes each captured message with its timestamp. Multi-line messages keep the prefix on
// every line.
func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		stamp := m.Time.Format(timestampFormat)
		for _, line := range strings.Split(m.Message, "\n") {
			fmt.Fprintf(dest, "%s[%s] %s\n", prefix, stamp, line)
		}
	}
}
