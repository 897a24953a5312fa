package sink

import (
	"context"
	"errors"
	"io"

	"log-receiver/internal/model"
)

// Sink receives every accepted entry. Implementations must be safe for
// concurrent use and must not interleave output from concurrent writes.
type Sink interface {
	Write(ctx context.Context, entry model.Entry) error
}

// Func adapts a plain function to a Sink.
type Func func(ctx context.Context, entry model.Entry) error

func (f Func) Write(ctx context.Context, entry model.Entry) error {
	return f(ctx, entry)
}

// Multi writes each entry to every sink in order. All sinks are attempted
// even if an earlier one fails.
type Multi []Sink

func (m Multi) Write(ctx context.Context, entry model.Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := Close(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes s if it holds resources.
func Close(s Sink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
