package rpc

import (
	"context"
	"io"
	"log/slog"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"

	"github.com/ketiboldiais/amicus/pkg/rune"
)

// Serve answers line-delimited JSON-RPC requests from r on w until r is
// exhausted.
func Serve(ctx context.Context, cfg rune.Config, r io.Reader, w io.WriteCloser) error {
	logger := slog.Default()
	logger.InfoContext(ctx, "starting RPC server")

	srv := jrpc2.NewServer(NewService(cfg).Methods(), &jrpc2.ServerOptions{
		Logger:      func(text string) { logger.Debug(text) },
		Concurrency: 4,
	})
	srv.Start(channel.Line(r, w))

	err := srv.Wait()
	logger.InfoContext(ctx, "RPC server closed", "error", err)
	return err
}
