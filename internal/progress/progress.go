// Package progress defines the reporting contract between the update
// workflow and its front ends.
package progress

import (
	"fmt"
	"io"
)

// Sink receives human-readable progress lines from a running scan. The
// workflow is the only producer; a front end (console printer or message
// queue consumer) is the only consumer.
type Sink interface {
	Line(s string)
}

// WriterSink prints each line to an io.Writer. Used by the console front end.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Line(line string) {
	_, _ = fmt.Fprintln(s.w, line)
}

// ChannelSink forwards each line onto a channel. The interactive front end
// drains the channel from its own event loop while the scan runs on a
// background goroutine.
type ChannelSink struct {
	ch chan<- string
}

// NewChannelSink creates a sink sending to ch. Sends block when the channel
// is full, so the consumer must keep draining until the producer is done.
func NewChannelSink(ch chan<- string) *ChannelSink {
	return &ChannelSink{ch: ch}
}

func (s *ChannelSink) Line(line string) {
	s.ch <- line
}

// Discard swallows all lines. Used when a front end renders a structured
// report instead of the live line stream.
type Discard struct{}

func (Discard) Line(string) {}
