package ioctx

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromDefaultsToDiscard(t *testing.T) {
	s := From(context.Background())
	require.Equal(t, io.Discard, s.Out)
	require.Equal(t, io.Discard, s.Err)
}

func TestWithStreamsKeepsOuterWriters(t *testing.T) {
	var out, errs bytes.Buffer
	ctx := WithStreams(context.Background(), Streams{Out: &out, Err: &errs})

	var inner bytes.Buffer
	ctx = WithStreams(ctx, Streams{Out: &inner})

	_, _ = io.WriteString(Stdout(ctx), "hello")
	_, _ = io.WriteString(Stderr(ctx), "oops")

	require.Equal(t, "hello", inner.String())
	require.Empty(t, out.String())
	require.Equal(t, "oops", errs.String())
}
