package main

import (
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/mottag/flow-checker/framework"

	"github.com/caarlos0/env/v11"
)

// envConfig supplies the defaults for the command-line flags.
type envConfig struct {
	BaseURL string        `env:"MOTTAG_BASE_URL" envDefault:"http://localhost:5210"`
	Timeout time.Duration `env:"MOTTAG_TIMEOUT" envDefault:"15s"`
}

type commandParams struct {
	baseURL     string
	timeout     time.Duration
	filters     framework.RegexFilters
	skipCleanup bool
	requests    bool
	noColor     bool
	debug       bool
	debugAll    bool
}

func (c *commandParams) Read(args []string) bool {
	return c.read(args, nil, os.Stderr)
}

// read parses the command line. If environment is nil, the process environment is used.
func (c *commandParams) read(args []string, environment map[string]string, errOut io.Writer) bool {
	var cfg envConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		fmt.Fprintf(errOut, "Invalid environment: %s\n", err)
		return false
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&c.baseURL, "url", cfg.BaseURL, "base URL of the API (env MOTTAG_BASE_URL)")
	fs.DurationVar(&c.timeout, "timeout", cfg.Timeout, "time limit for each request (env MOTTAG_TIMEOUT)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select checks to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select checks not to run")
	fs.BoolVar(&c.skipCleanup, "skip-cleanup", false, "do not delete existing records before the flows")
	fs.BoolVar(&c.requests, "requests", true, "list every request in the report")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	fs.BoolVar(&c.debug, "debug", false, "show request details for failed checks")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show request details for all checks")

	if err := fs.Parse(args[1:]); err != nil {
		return false // the flag package has already printed the error and usage
	}
	if err := validateBaseURL(c.baseURL); err != nil {
		fmt.Fprintln(errOut, err)
		fs.Usage()
		return false
	}
	if c.timeout <= 0 {
		fmt.Fprintln(errOut, "-timeout must be greater than zero")
		fs.Usage()
		return false
	}
	return true
}

func validateBaseURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid -url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid -url %q: must be an absolute http or https URL", s)
	}
	return nil
}
