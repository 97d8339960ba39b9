// Command logsync mirrors JSON log objects from a bucket into a local
// directory.
//
// Usage:
//
//	logsync sync     download new objects into DD-MM-YYYY-S<n>.json files
//	logsync today    rebuild the combined file from today's objects
//	logsync all      run sync, then today
//
// The bucket comes from --bucket, LOGSYNC_BUCKET or BUCKET_NAME.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(os.LookupEnv)
	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "logsync:", err)
		stop()
		os.Exit(1)
	}
}
