package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mottag/flow-checker/client"
	"github.com/mottag/flow-checker/flows"
	"github.com/mottag/flow-checker/framework"
	"github.com/mottag/flow-checker/report"
	"github.com/mottag/flow-checker/stats"

	"github.com/fatih/color"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}
	if params.noColor {
		color.NoColor = true
	}

	loggers := ldlog.NewDefaultLoggers()
	loggers.SetBaseLogger(log.New(os.Stdout, "", log.LstdFlags))
	if params.debug || params.debugAll {
		loggers.SetMinLevel(ldlog.Debug)
	}

	accumulator := stats.NewAccumulator()
	executor := client.NewExecutor(params.baseURL, params.timeout, accumulator)

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)

	loggers.Infof("Checking API at %s (timeout %s)", executor.BaseURL(), params.timeout)

	checkLogger := &ConsoleCheckLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	results := flows.RunSuite(executor, flows.SuiteOptions{
		Filter:      params.filters.AsFilter,
		SkipCleanup: params.skipCleanup,
		Loggers:     loggers,
	}, checkLogger)

	fmt.Println()
	if err := report.Print(os.Stdout, accumulator.Outcomes(), results, report.Options{Requests: params.requests}); err != nil {
		loggers.Errorf("Could not print report: %s", err)
	}
	if !results.OK() {
		os.Exit(1)
	}
}
