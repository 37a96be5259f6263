package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
)

// HTTPTriggerRequest represents the structure of the JSON payload for HTTP triggers.
type HTTPTriggerRequest struct {
	Data struct {
		Req struct {
			URL             string              `json:"Url"`
			Method          string              `json:"Method"`
			Query           map[string]string   `json:"Query"`
			Headers         map[string][]string `json:"Headers"`
			Params          map[string]string   `json:"Params"`
			Body            string              `json:"Body"`
			IsBase64Encoded bool                `json:"isBase64Encoded"`
		} `json:"req"`
	} `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// HTTPTriggerResponse represents the structure of the JSON response for HTTP triggers.
type HTTPTriggerResponse struct {
	Outputs struct {
		Res struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       string            `json:"body"`
		} `json:"res"`
	} `json:"Outputs"`
	Logs        []string `json:"Logs,omitempty"`
	ReturnValue any      `json:"ReturnValue,omitempty"`
}

// unwrapRequest rebuilds the original request from the trigger envelope.
// Some hosts send base64 bodies without setting isBase64Encoded, so a body
// that decodes cleanly is always treated as base64.
func unwrapRequest(invokeReq HTTPTriggerRequest) (*http.Request, error) {
	reqData := invokeReq.Data.Req

	var body io.Reader = http.NoBody
	if reqData.Body != "" {
		raw := []byte(reqData.Body)
		if decoded, err := base64.StdEncoding.DecodeString(reqData.Body); err == nil {
			raw = decoded
		} else if reqData.IsBase64Encoded {
			return nil, fmt.Errorf("failed to decode base64 body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(reqData.Method, reqData.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create internal request: %w", err)
	}
	for k, values := range reqData.Headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// wrapResponse converts a recorded response into the trigger envelope.
func wrapResponse(recorder *httptest.ResponseRecorder) HTTPTriggerResponse {
	result := recorder.Result()
	defer result.Body.Close()
	body, _ := io.ReadAll(result.Body)

	headers := make(map[string]string, len(result.Header))
	for k, v := range result.Header {
		headers[k] = strings.Join(v, ", ")
	}

	var resp HTTPTriggerResponse
	resp.Outputs.Res.StatusCode = result.StatusCode
	resp.Outputs.Res.Headers = headers
	resp.Outputs.Res.Body = string(body)
	return resp
}

// HandleHttpTrigger adapts the Azure Functions JSON POST request to a standard HTTP request/response.
// It wraps the provided Next handler (usually the ServeMux).
func (d *Dependencies) HandleHttpTrigger(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var invokeReq HTTPTriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&invokeReq); err != nil {
			slog.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}

		req, err := unwrapRequest(invokeReq)
		if err != nil {
			slog.Error("failed to unwrap HTTP trigger request", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req = req.WithContext(r.Context())

		slog.Info("processing wrapped HTTP request", "method", req.Method, "path", req.URL.Path)

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, req)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(wrapResponse(recorder)); err != nil {
			slog.Error("failed to encode HTTP trigger response", "error", err)
		}
	}
}
