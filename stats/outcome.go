package stats

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// HTTP methods used by the flows. Outcomes are grouped by these in the summary.
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodDelete = "DELETE"
)

// RequestOutcome is the record of a single API call.
//
// A StatusCode of zero means the call never completed an HTTP round trip (connection refused,
// timeout, DNS failure, and so on); in that case ErrorMessage describes the transport error.
// Payload is the decoded response body for successful calls and null otherwise.
type RequestOutcome struct {
	OK            bool
	StatusCode    int
	Payload       ldvalue.Value
	ErrorMessage  ldvalue.OptionalString
	ElapsedMillis float64
	Path          string
	Method        string
}

// IsTransportFailure returns true if the call failed before any HTTP status was received.
func (o RequestOutcome) IsTransportFailure() bool {
	return !o.OK && o.StatusCode == 0
}

func (o RequestOutcome) String() string {
	if o.OK {
		return fmt.Sprintf("%s %s -> %d (%.1f ms)", o.Method, o.Path, o.StatusCode, o.ElapsedMillis)
	}
	return fmt.Sprintf("%s %s -> %d (%.1f ms): %s", o.Method, o.Path, o.StatusCode, o.ElapsedMillis,
		o.ErrorMessage.StringValue())
}
