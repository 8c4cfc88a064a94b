package unittest

import (
	"flag"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var verbose = flag.Bool("vv", false, "print debugging logs")

// Logger returns a zerolog
// use -vv flag to print debugging logs for tests
func Logger() zerolog.Logger {
	writer := io.Discard

	if *verbose {
		writer = os.Stderr
	}
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(writer).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return log
}

// HookedLogger returns a logger whose events are also passed to the hook, so
// tests can count warnings or errors emitted by the code under test.
func HookedLogger(hook zerolog.Hook) zerolog.Logger {
	return Logger().Hook(hook)
}

// LevelCounter is a zerolog.Hook counting log events per level.
type LevelCounter struct {
	mu     sync.Mutex
	counts map[zerolog.Level]int
}

func NewLevelCounter() *LevelCounter {
	return &LevelCounter{counts: make(map[zerolog.Level]int)}
}

func (c *LevelCounter) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[level]++
}

// Count returns the number of events logged at the given level.
func (c *LevelCounter) Count(level zerolog.Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[level]
}
