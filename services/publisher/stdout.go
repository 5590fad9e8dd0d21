package publisher

import (
	"io"
)

// StdoutPublisher writes each record as one line to a stream, with no
// enclosing envelope. This is the primary output: JSON Lines on stdout.
type StdoutPublisher struct {
	w io.Writer
}

// NewStdoutPublisher creates a publisher writing to w
func NewStdoutPublisher(w io.Writer) *StdoutPublisher {
	return &StdoutPublisher{w: w}
}

// Publish writes the record followed by a newline
func (p *StdoutPublisher) Publish(message []byte) error {
	if _, err := p.w.Write(message); err != nil {
		return err
	}
	_, err := p.w.Write([]byte("\n"))
	return err
}

// Close is a no-op; the writer is owned by the caller
func (p *StdoutPublisher) Close() error {
	return nil
}
