// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/mmdbatch/internal/ctxlog"
)

// Watch monitors the signal channel and handles signals.
// The first signal of a type is left to the running child processes, which
// receive it through their own broker. The second signal of the same type
// cancels the context. Watch returns when sigCh is closed or ctx is done.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	sigMap := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, seen := sigMap[sig]; seen {
				ctxlog.Logger(ctx).Warn("watchdog",
					"detail", "received second signal of type, forcefully terminating",
					"signal", sig.String())
				cancel()

				return
			}

			ctxlog.Logger(ctx).Info("watchdog",
				"detail", "received first signal of type, forwarded to running renderers",
				"signal", sig.String())

			sigMap[sig] = struct{}{}
		}
	}
}
