package flows

import (
	"encoding/json"

	"github.com/mottag/flow-checker/framework"
	"github.com/mottag/flow-checker/stats"
)

// logStep writes a titled description of one call, including the response body for successful
// calls and the error text otherwise.
func logStep(logger framework.Logger, title string, o stats.RequestOutcome) {
	logger.Printf("=== %s ===", title)
	logger.Printf("%s %s -> Status: %d | Ok: %t | %.1f ms", o.Method, o.Path, o.StatusCode, o.OK, o.ElapsedMillis)
	if !o.OK {
		logger.Printf("Error: %s", o.ErrorMessage.StringValue())
		return
	}
	if o.Payload.IsNull() {
		return
	}
	if data, err := json.MarshalIndent(o.Payload, "", "  "); err == nil {
		logger.Printf("%s", data)
	} else {
		logger.Printf("%s", o.Payload.JSONString())
	}
}
