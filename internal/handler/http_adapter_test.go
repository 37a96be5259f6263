package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triggerBody(t *testing.T, method, url, body string) *bytes.Buffer {
	t.Helper()
	var invoke HTTPTriggerRequest
	invoke.Data.Req.Method = method
	invoke.Data.Req.URL = url
	invoke.Data.Req.Body = body
	invoke.Data.Req.Headers = map[string][]string{"Content-Type": {"application/json"}}

	raw, err := json.Marshal(invoke)
	require.NoError(t, err)
	return bytes.NewBuffer(raw)
}

func TestHandleHttpTrigger_RoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		WriteJSON(w, http.StatusCreated, map[string]string{"got": string(body)})
	})

	deps := &Dependencies{}
	encoded := base64.StdEncoding.EncodeToString([]byte(`{"x":1}`))
	req := httptest.NewRequest(http.MethodPost, "/HttpTrigger", triggerBody(t, http.MethodPost, "http://localhost:7071/api/echo", encoded))
	w := httptest.NewRecorder()

	deps.HandleHttpTrigger(mux)(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp HTTPTriggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusCreated, resp.Outputs.Res.StatusCode)
	assert.Equal(t, "application/json", resp.Outputs.Res.Headers["Content-Type"])
	assert.JSONEq(t, `{"got":"{\"x\":1}"}`, resp.Outputs.Res.Body)
}

func TestHandleHttpTrigger_RawBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/transactions", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	})

	deps := &Dependencies{}
	req := httptest.NewRequest(http.MethodPost, "/HttpTrigger", triggerBody(t, http.MethodPatch, "http://localhost:7071/api/transactions", `{"id":"t1"}`))
	w := httptest.NewRecorder()

	deps.HandleHttpTrigger(mux)(w, req)

	var resp HTTPTriggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Outputs.Res.StatusCode)
	assert.Equal(t, `{"id":"t1"}`, resp.Outputs.Res.Body)
}

func TestHandleHttpTrigger_InvalidEnvelope(t *testing.T) {
	deps := &Dependencies{}
	req := httptest.NewRequest(http.MethodPost, "/HttpTrigger", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()

	deps.HandleHttpTrigger(http.NewServeMux())(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseMonth(t *testing.T) {
	m, err := parseMonth("")
	require.NoError(t, err)
	assert.Empty(t, m)

	m, err = parseMonth("2025-02")
	require.NoError(t, err)
	assert.Equal(t, "2025-02", m)

	_, err = parseMonth("2025-2-01")
	assert.Error(t, err)
}
