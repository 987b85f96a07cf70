package assistant

import (
	"time"

	"github.com/teemow/cassandra/internal/logging"
)

type options struct {
	concurrency int
	calendarID  string
	logger      logging.Logger
	recorder    Recorder
	clock       func() time.Time
}

// Option configures a Searcher or a Creator.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		concurrency: DefaultConcurrency,
		calendarID:  DefaultCalendarID,
		logger:      logging.DefaultLogger(),
		recorder:    nopRecorder{},
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithConcurrency sets the number of concurrent sub-searches. Values below one
// are ignored.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithCalendarID sets the calendar new events are created in.
func WithCalendarID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.calendarID = id
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder sets the measurement sink.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithClock overrides the clock used when a request carries no reference time.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}
