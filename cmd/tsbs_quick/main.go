// tsbs_quick sets up and runs a TSBS benchmark against GreptimeDB.
//
// It builds tsbs_generate_data and tsbs_load_greptime into a workspace if
// they are missing, generates the cpu-only dataset once, keeps a
// tsbs_load_greptime.yaml next to it and runs the loader with it:
//
//	tsbs_quick generate
//	tsbs_quick greptime
//
// Artifacts that already exist are reused as is, including the load config:
// edit it by hand or pass --refresh-config to rebuild it from the template.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
