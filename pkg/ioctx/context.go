// Package ioctx carries output streams through a context so that evaluation
// never writes to the process's stdout directly.
package ioctx

import (
	"context"
	"io"
)

// Streams is the pair of writers an evaluation prints to.
type Streams struct {
	Out io.Writer
	Err io.Writer
}

type streamsKey struct{}

// WithStreams returns a context carrying s. A nil writer in s is replaced by
// the one already in ctx, if any.
func WithStreams(ctx context.Context, s Streams) context.Context {
	prev := From(ctx)
	if s.Out == nil {
		s.Out = prev.Out
	}
	if s.Err == nil {
		s.Err = prev.Err
	}
	return context.WithValue(ctx, streamsKey{}, s)
}

// From returns the streams carried by ctx. Missing writers discard.
func From(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)
	if s.Out == nil {
		s.Out = io.Discard
	}
	if s.Err == nil {
		s.Err = io.Discard
	}
	return s
}

func Stdout(ctx context.Context) io.Writer { return From(ctx).Out }

func Stderr(ctx context.Context) io.Writer { return From(ctx).Err }
