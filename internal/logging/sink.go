package logging

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
)

// sinkWriter fans every log line out to all sinks. A failing sink does
// not stop the others; its error is reported with the sink position.
type sinkWriter struct {
	sinks []io.Writer
}

func newSinkWriter(sinks ...io.Writer) *sinkWriter {
	return &sinkWriter{sinks: sinks}
}

// Write reports len(p) when at least one sink took the whole line, so a
// broken file sink never silences stdout.
func (sw *sinkWriter) Write(p []byte) (int, error) {
	var (
		err       error
		delivered bool
	)
	for i, sink := range sw.sinks {
		n, werr := sink.Write(p)
		if werr != nil {
			err = multierr.Append(err, fmt.Errorf("log sink %d: %w", i, werr))
			continue
		}
		if n == len(p) {
			delivered = true
		}
	}
	if delivered {
		return len(p), err
	}
	return 0, err
}
