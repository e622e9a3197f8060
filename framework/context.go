package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type environment struct {
	results     Results
	checkLogger CheckLogger
	filter      Filter
}

// Context is the scope of a single named check. It implements the TestingT interfaces of the
// testify assert and require packages, so assertions can be made against it as if it were a
// *testing.T.
//
// A check is either gating or informational. Failures of gating checks make the whole run fail;
// failures of informational checks are only reported.
type Context struct {
	env         *environment
	id          CheckID
	gating      bool
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run executes the top-level action and returns the results of every check it started.
func Run(
	filter Filter,
	checkLogger CheckLogger,
	action func(*Context),
) Results {
	if checkLogger == nil {
		checkLogger = nullCheckLogger{}
	}
	env := &environment{
		filter:      filter,
		checkLogger: checkLogger,
	}
	c := &Context{env: env, gating: true}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if c.skipped {
				return
			}
			c.failed = true
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.errors) == 0 {
					addError = errors.New("check failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in check: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.errors = append(c.errors, addError)
				c.env.checkLogger.CheckError(c.id, addError)
			}
		}
		if len(c.id.Path) == 0 && !c.failed {
			return // the root scope is only reported if something went wrong outside any check
		}
		result := CheckResult{ID: c.id, Errors: c.errors, Gating: c.gating}
		c.env.results.Checks = append(c.env.results.Checks, result)
		if c.failed {
			if c.gating {
				c.env.results.Failures = append(c.env.results.Failures, result)
			} else {
				c.env.results.Warnings = append(c.env.results.Warnings, result)
			}
		}
	}()

	action(c)
}

func (c *Context) ID() CheckID {
	return c.id
}

// Gating returns true if a failure of this check fails the run.
func (c *Context) Gating() bool {
	return c.gating
}

// Failed returns true if Errorf or FailNow has been called for this check.
func (c *Context) Failed() bool {
	return c.failed
}

// Run runs a gating subcheck. A subcheck of an informational check is also informational.
func (c *Context) Run(name string, action func(*Context)) {
	c.runSubcheck(name, c.gating, action)
}

// RunInformational runs a subcheck whose failure is reported but does not fail the run.
func (c *Context) RunInformational(name string, action func(*Context)) {
	c.runSubcheck(name, false, action)
}

func (c *Context) runSubcheck(name string, gating bool, action func(*Context)) {
	id := CheckID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.checkLogger.CheckStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.results.Checks = append(c.env.results.Checks, CheckResult{ID: id, Skipped: true, Gating: gating})
		c.env.checkLogger.CheckSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:     id,
		env:    c.env,
		gating: gating,
	}
	c1.run(action)
	if c1.skipped {
		c.env.results.Checks = append(c.env.results.Checks, CheckResult{ID: id, Skipped: true, Gating: gating})
		c.env.checkLogger.CheckSkipped(id, c1.skipReason)
	} else {
		c.env.checkLogger.CheckFinished(id, c1.failed, gating, c1.debugLogger.Output())
	}
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.checkLogger.CheckError(c.id, err)
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug adds a line to the check's captured debug output.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
