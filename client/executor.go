package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mottag/flow-checker/framework"
	"github.com/mottag/flow-checker/stats"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DefaultTimeout is the time limit for a single API call, including reading the response body.
const DefaultTimeout = time.Second * 15

const jsonContentType = "application/json"

// Executor makes single API calls against a base URL and reports each one as a
// stats.RequestOutcome.
//
// Every call is recorded in the Accumulator before Do returns, whether it succeeded, got an
// error status, or failed at the transport level. There are no retries.
type Executor struct {
	baseURL     string
	httpClient  *http.Client
	accumulator *stats.Accumulator
	logger      framework.Logger
}

// NewExecutor creates an Executor. A timeout of zero or less means DefaultTimeout.
func NewExecutor(baseURL string, timeout time.Duration, accumulator *stats.Accumulator) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if accumulator == nil {
		accumulator = stats.NewAccumulator()
	}
	return &Executor{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		accumulator: accumulator,
		logger:      framework.NullLogger(),
	}
}

// WithLogger returns an Executor that shares this one's HTTP client and Accumulator but writes
// its debug output to the given logger.
func (e *Executor) WithLogger(logger framework.Logger) *Executor {
	if logger == nil {
		logger = framework.NullLogger()
	}
	e1 := *e
	e1.logger = logger
	return &e1
}

func (e *Executor) BaseURL() string { return e.baseURL }

func (e *Executor) Logger() framework.Logger { return e.logger }

func (e *Executor) Accumulator() *stats.Accumulator { return e.accumulator }

func (e *Executor) Get(path string, query url.Values) stats.RequestOutcome {
	return e.Do(stats.MethodGet, path, nil, query)
}

func (e *Executor) Post(path string, payload interface{}) stats.RequestOutcome {
	return e.Do(stats.MethodPost, path, payload, nil)
}

func (e *Executor) Put(path string, payload interface{}) stats.RequestOutcome {
	return e.Do(stats.MethodPut, path, payload, nil)
}

func (e *Executor) Delete(path string) stats.RequestOutcome {
	return e.Do(stats.MethodDelete, path, nil, nil)
}

// Do makes one call. The payload, if not nil, is sent as a JSON body; query parameters, if any,
// are appended to the path.
func (e *Executor) Do(method, path string, payload interface{}, query url.Values) stats.RequestOutcome {
	requestPath := path
	if len(query) > 0 {
		requestPath += "?" + query.Encode()
	}
	target := e.baseURL + requestPath

	start := time.Now()
	resp, reqBody, err := e.roundTrip(method, target, payload)
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	outcome := stats.RequestOutcome{
		Payload:       ldvalue.Null(),
		ElapsedMillis: elapsed,
		Path:          requestPath,
		Method:        method,
	}
	if err != nil {
		outcome.ErrorMessage = ldvalue.NewOptionalString(err.Error())
	} else {
		outcome.StatusCode = resp.status
		outcome.OK = resp.status >= 200 && resp.status < 300
		if outcome.OK {
			outcome.Payload = decodeBody(resp.contentType, resp.body)
		} else {
			outcome.ErrorMessage = ldvalue.NewOptionalString(errorText(resp.status, resp.body))
		}
	}

	e.accumulator.Add(outcome)
	e.logger.Printf("%s | ok: %t", outcome, outcome.OK)
	if !outcome.OK {
		e.logger.Printf("repro: %s", CurlCommand(method, target, reqBody))
	}
	return outcome
}

type rawResponse struct {
	status      int
	contentType string
	body        []byte
}

func (e *Executor) roundTrip(method, target string, payload interface{}) (rawResponse, []byte, error) {
	var reqBody []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return rawResponse{}, nil, fmt.Errorf("could not encode request body: %w", err)
		}
		reqBody = data
	}
	req, err := http.NewRequest(method, target, bytes.NewReader(reqBody))
	if err != nil {
		return rawResponse{}, reqBody, err
	}
	req.Header.Set("Content-Type", jsonContentType)
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return rawResponse{}, reqBody, err
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return rawResponse{}, reqBody, fmt.Errorf("error reading response body: %w", err)
	}
	return rawResponse{status: resp.StatusCode, contentType: resp.Header.Get("Content-Type"), body: body}, reqBody, nil
}

// decodeBody returns the parsed JSON body if the response declared a JSON media type and the
// body is valid JSON, or else the body as a string value.
func decodeBody(contentType string, body []byte) ldvalue.Value {
	if isJSONMediaType(contentType) && json.Valid(body) {
		return ldvalue.Parse(body)
	}
	return ldvalue.String(string(body))
}

func isJSONMediaType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == jsonContentType || strings.HasSuffix(mediaType, "+json")
}

func errorText(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	}
	return text
}
