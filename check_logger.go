package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mottag/flow-checker/framework"

	"github.com/fatih/color"
)

var (
	failedLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	warnLabel   = color.New(color.FgYellow).SprintFunc()
	skipLabel   = color.New(color.FgCyan).SprintFunc()
)

// ConsoleCheckLogger prints check progress to standard output.
type ConsoleCheckLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleCheckLogger) CheckStarted(id framework.CheckID) {
	fmt.Printf("[%s]\n", id)
}

func (c *ConsoleCheckLogger) CheckError(id framework.CheckID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Printf("  %s\n", line)
	}
}

func (c *ConsoleCheckLogger) CheckFinished(id framework.CheckID, failed, gating bool, debugOutput framework.CapturedOutput) {
	if failed {
		if gating {
			fmt.Printf("  %s %s\n", failedLabel("FAILED:"), id)
		} else {
			fmt.Printf("  %s %s\n", warnLabel("WARNING:"), id)
		}
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(os.Stdout, "    DEBUG ")
	}
}

func (c *ConsoleCheckLogger) CheckSkipped(id framework.CheckID, reason string) {
	if reason == "" {
		fmt.Printf("  %s %s\n", skipLabel("SKIPPED:"), id)
	} else {
		fmt.Printf("  %s %s (%s)\n", skipLabel("SKIPPED:"), id, reason)
	}
}
