// Package httpserver wraps net/http with configurable timeouts, graceful
// shutdown and health-check handlers.
//
// Run blocks until its context is canceled, then shuts the server down with
// http.Server.Shutdown under the configured deadline. It returns a function
// shape that fits golang.org/x/sync/errgroup:
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	g.Go(func() error { return srv.Run(ctx, router) })
//
// Start and shutdown failures are wrapped with ErrStart and ErrShutdown so
// they can be inspected with errors.Is.
package httpserver
