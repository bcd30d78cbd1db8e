// Package app wires the dashboard server: it loads the cleaned accident
// table, builds the HTTP router and runs the server until the context is
// cancelled.
//
// # Lifecycle
//
//	app, err := app.NewApplication(ctx, cfg, paths, "", metrics, logger)
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
//
// The server and its shutdown watcher run in one errgroup. Cancelling the
// context drains in-flight requests within Server.ShutdownTimeout.
//
// The app does not call os.Exit; the caller decides the exit code.
package app
