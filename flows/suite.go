package flows

import (
	"fmt"
	"net/http"

	"github.com/mottag/flow-checker/client"
	"github.com/mottag/flow-checker/framework"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"

	"github.com/stretchr/testify/assert"
)

// Check names, as used in results and in -run/-skip filters.
const (
	CheckCleanup        = "cleanup"
	CheckPatioLifecycle = "patio lifecycle"
	CheckMotoLifecycle  = "moto lifecycle"
	CheckTagLifecycle   = "tag lifecycle"
	CheckChain          = "chained patio-moto-tag"
)

// SuiteOptions controls RunSuite.
type SuiteOptions struct {
	Filter      framework.Filter
	SkipCleanup bool
	Loggers     ldlog.Loggers
}

// RunSuite runs the whole sequence: cleanup, the isolated lifecycle flows for yards, vehicles
// and tags, and the chained scenario.
//
// Only the isolated lifecycle flows are gating. Cleanup and the chained scenario are reported as
// informational checks, so Results.OK() reflects just the create, read, update and delete steps
// of the three lifecycle flows.
func RunSuite(e *client.Executor, opts SuiteOptions, checkLogger framework.CheckLogger) framework.Results {
	loggers := opts.Loggers
	return framework.Run(opts.Filter, checkLogger, func(c *framework.Context) {
		if !opts.SkipCleanup {
			c.RunInformational(CheckCleanup, func(c *framework.Context) {
				loggers.Info("Removing existing data")
				report := Cleanup(e.WithLogger(c.DebugLogger()), loggers)
				for _, cc := range report.Collections {
					if cc.ListFailed {
						c.Errorf("could not list all records in %s", cc.Collection)
					}
					if cc.Failed > 0 {
						c.Errorf("%d of %d deletes failed in %s", cc.Failed, cc.Found, cc.Collection)
					}
				}
			})
		}

		c.Run(CheckPatioLifecycle, func(c *framework.Context) {
			checkLifecycle(c, RunLifecycle(e.WithLogger(c.DebugLogger()), PatioLifecycle()))
		})
		c.Run(CheckMotoLifecycle, func(c *framework.Context) {
			checkLifecycle(c, RunMotoLifecycleInNewPatio(e.WithLogger(c.DebugLogger())))
		})
		c.Run(CheckTagLifecycle, func(c *framework.Context) {
			checkLifecycle(c, RunLifecycle(e.WithLogger(c.DebugLogger()), TagLifecycle()))
		})

		c.RunInformational(CheckChain, func(c *framework.Context) {
			r := RunChain(e.WithLogger(c.DebugLogger()))
			if r.Status(YardCreated) != StepDone {
				c.Errorf("could not create the yard; the rest of the chain was skipped")
				return
			}
			for _, step := range AllChainSteps {
				if step != DuplicateTagAttempted && r.Status(step) != StepDone {
					c.Errorf("step %s: %s", step, r.Status(step))
				}
			}
			if r.Status(DuplicateTagAttempted) != StepSkipped {
				assert.Equal(c, http.StatusConflict, r.DuplicateStatus, "duplicate tag serial should be rejected")
			}
		})
	})
}

func checkLifecycle(c *framework.Context, r LifecycleResult) {
	if r.ID == "" {
		c.Errorf("%s: create did not return an identifier; remaining steps skipped", r.Name)
		return
	}
	for _, step := range r.FailedSteps() {
		o := r.Outcomes[step]
		c.Errorf("%s %s failed: %s", r.Name, step, describeFailure(o.StatusCode, o.ErrorMessage.StringValue()))
	}
	if r.StillListed {
		c.Debug("%s %s was still listed after delete", r.Name, r.ID)
	}
}

func describeFailure(status int, message string) string {
	if status == 0 {
		return "no response: " + message
	}
	return fmt.Sprintf("HTTP %d: %s", status, message)
}
