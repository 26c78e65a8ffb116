package httpapi

import (
	"context"
)

// serverBaseCtx is the process-level context handlers derive their work from.
// main cancels it on shutdown so in-flight generations and switches stop with
// the server. Defaults to Background until SetBaseContext is called.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context canceled when either parent is done, so a
// generation stops on client disconnect and on server shutdown alike. The
// returned cancel must be called when the handler ends to release the
// watcher goroutine.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		}
	}()
	return ctx, cancel
}
