package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mottag/flow-checker/framework"
	"github.com/mottag/flow-checker/stats"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonHeaders(contentType string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", contentType)
	return h
}

func TestPostSendsJSONAndRecordsOutcome(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithJSONResponse(map[string]interface{}{"data": map[string]interface{}{"id": "abc"}}, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		acc := stats.NewAccumulator()
		e := NewExecutor(server.URL+"/", 0, acc)

		o := e.Post("/api/v1/patios", map[string]interface{}{"nome": "Patio Fluxo", "areaM2": 500})

		assert.True(t, o.OK)
		assert.Equal(t, 200, o.StatusCode)
		assert.Equal(t, stats.MethodPost, o.Method)
		assert.Equal(t, "/api/v1/patios", o.Path)
		assert.False(t, o.ErrorMessage.IsDefined())
		assert.GreaterOrEqual(t, o.ElapsedMillis, 0.0)
		assert.Equal(t, "abc", o.Payload.GetByKey("data").GetByKey("id").StringValue())

		require.Equal(t, 1, acc.Len())
		assert.Equal(t, o, acc.Outcomes()[0])

		r := <-requestsCh
		assert.Equal(t, "POST", r.Request.Method)
		assert.Equal(t, "/api/v1/patios", r.Request.URL.Path)
		assert.Equal(t, "application/json", r.Request.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"nome":"Patio Fluxo","areaM2":500}`, string(r.Body))
	})
}

func TestGetEncodesQuery(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithJSONResponse(map[string]interface{}{"items": []interface{}{}}, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		e := NewExecutor(server.URL, 0, nil)
		q := make(map[string][]string)
		q["page"] = []string{"1"}
		q["pageSize"] = []string{"5"}

		o := e.Get("/api/v1/motos", q)

		assert.True(t, o.OK)
		assert.Equal(t, "/api/v1/motos?page=1&pageSize=5", o.Path)
		r := <-requestsCh
		assert.Equal(t, "5", r.Request.URL.Query().Get("pageSize"))
		assert.Len(t, r.Body, 0)
	})
}

func TestErrorStatusDiscardsPayload(t *testing.T) {
	body := []byte(`{"status":409,"title":"Conflito","detail":"serial already exists"}`)
	handler := httphelpers.HandlerWithResponse(409, jsonHeaders("application/problem+json"), body)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		acc := stats.NewAccumulator()
		e := NewExecutor(server.URL, 0, acc)

		o := e.Post("/api/v1/tags", map[string]string{"serial": "TAG-INT-1"})

		assert.False(t, o.OK)
		assert.Equal(t, 409, o.StatusCode)
		assert.True(t, o.Payload.IsNull())
		assert.Equal(t, string(body), o.ErrorMessage.StringValue())
		assert.False(t, o.IsTransportFailure())
		assert.Equal(t, 1, acc.Len())
	})
}

func TestErrorStatusWithEmptyBody(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(404), func(server *httptest.Server) {
		e := NewExecutor(server.URL, 0, nil)
		o := e.Delete("/api/v1/tags/missing")
		assert.False(t, o.OK)
		assert.Equal(t, 404, o.StatusCode)
		assert.Equal(t, "HTTP 404 Not Found", o.ErrorMessage.StringValue())
	})
}

func TestNonJSONBodyIsKeptAsText(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(200, jsonHeaders("text/plain"), []byte(`{"id":"x"}`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		e := NewExecutor(server.URL, 0, nil)
		o := e.Get("/api/v1/patios/x", nil)
		assert.True(t, o.OK)
		assert.Equal(t, ldvalue.String(`{"id":"x"}`), o.Payload)
		_, found := ExtractID(o)
		assert.False(t, found)
	})
}

func TestNoContentGivesEmptyTextPayload(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(204), func(server *httptest.Server) {
		e := NewExecutor(server.URL, 0, nil)
		o := e.Delete("/api/v1/patios/x")
		assert.True(t, o.OK)
		assert.Equal(t, 204, o.StatusCode)
		assert.Equal(t, ldvalue.String(""), o.Payload)
	})
}

func TestConnectionFailureIsRecordedWithStatusZero(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	acc := stats.NewAccumulator()
	e := NewExecutor(url, 0, acc)
	o := e.Get("/api/v1/patios", nil)

	assert.False(t, o.OK)
	assert.Equal(t, 0, o.StatusCode)
	assert.True(t, o.IsTransportFailure())
	assert.True(t, o.Payload.IsNull())
	assert.True(t, o.ErrorMessage.IsDefined())
	assert.NotEqual(t, "", o.ErrorMessage.StringValue())
	assert.Equal(t, 1, acc.Len())
}

func TestTimeoutIsRecordedWithStatusZero(t *testing.T) {
	release := make(chan struct{})
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(time.Second * 5):
		}
		w.WriteHeader(200)
	})
	httphelpers.WithServer(slow, func(server *httptest.Server) {
		defer close(release)
		acc := stats.NewAccumulator()
		e := NewExecutor(server.URL, time.Millisecond*50, acc)

		o := e.Get("/api/v1/tags", nil)

		assert.False(t, o.OK)
		assert.Equal(t, 0, o.StatusCode)
		assert.True(t, o.ErrorMessage.IsDefined())
		assert.GreaterOrEqual(t, o.ElapsedMillis, 50.0)
		assert.Equal(t, 1, acc.Len())
	})
}

func TestUnencodablePayloadIsRecordedAsFailure(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		acc := stats.NewAccumulator()
		e := NewExecutor(server.URL, 0, acc)

		o := e.Post("/api/v1/patios", map[string]interface{}{"bad": make(chan int)})

		assert.False(t, o.OK)
		assert.Equal(t, 0, o.StatusCode)
		assert.Contains(t, o.ErrorMessage.StringValue(), "could not encode request body")
		assert.Equal(t, 1, acc.Len())
		assert.Len(t, requestsCh, 0)
	})
}

func TestWithLoggerSharesAccumulator(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		acc := stats.NewAccumulator()
		e := NewExecutor(server.URL, 0, acc)
		var debug framework.CapturingLogger
		e1 := e.WithLogger(&debug)

		e1.Put("/api/v1/motos/1", map[string]string{"modelo": "CG 160"})
		e.Get("/api/v1/motos", nil)

		assert.Equal(t, 2, acc.Len())
		assert.Same(t, acc, e1.Accumulator())

		output := debug.Output()
		require.Len(t, output, 2)
		assert.Contains(t, output[0].Message, "PUT /api/v1/motos/1 -> 500")
		assert.True(t, strings.HasPrefix(output[1].Message, "repro: curl -sS -X PUT"))
	})
}

func TestCurlCommandQuotesArguments(t *testing.T) {
	body, _ := json.Marshal(map[string]int{"a": 1})
	assert.Equal(t,
		`curl -sS -X POST -H 'Content-Type: application/json' --data '{"a":1}' http://localhost:5210/api/v1/tags`,
		CurlCommand("POST", "http://localhost:5210/api/v1/tags", body))
	assert.Equal(t,
		`curl -sS -X DELETE -H 'Content-Type: application/json' 'http://localhost:5210/api/v1/tags?page=1&pageSize=50'`,
		CurlCommand("DELETE", "http://localhost:5210/api/v1/tags?page=1&pageSize=50", nil))
}
