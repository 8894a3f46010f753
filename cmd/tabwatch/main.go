package main

import (
	"context"
	"fmt"
	"os"

	"tabwatch/cmd/tabwatch/commands"
	"tabwatch/lib/telemetry"
)

func main() {
	ctx := context.Background()
	t, err := telemetry.SetupFromEnv(ctx, "tabwatch")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to set up telemetry:", err)
		os.Exit(1)
	}
	defer t.Shutdown(ctx)
	telemetry.InitSlog(false)

	commands.ExecuteContext(ctx)
}
