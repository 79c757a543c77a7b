package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
)

// HTTPTriggerRequest is the envelope the Functions host sends for HTTP
// triggers when request forwarding is disabled.
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

// HTTPTriggerResponse is the envelope returned to the Functions host.
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

// decodeTriggerBody returns the request body. Some hosts send base64 without
// setting isBase64Encoded, so JSON bodies are detected first and anything
// else that decodes as base64 is decoded.
func decodeTriggerBody(body string, isBase64 bool) []byte {
	raw := []byte(body)
	if !isBase64 && json.Valid(raw) {
		return raw
	}
	if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
		return decoded
	}
	return raw
}

// HandleHttpTrigger unwraps a Functions host envelope, serves it through
// next and wraps the recorded response.
func (d *Dependencies) HandleHttpTrigger(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var invokeReq HTTPTriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&invokeReq); err != nil {
			slog.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}

		reqData := invokeReq.Data.Req
		var bodyReader io.Reader = http.NoBody
		if reqData.Body != "" {
			bodyReader = bytes.NewReader(decodeTriggerBody(reqData.Body, reqData.IsBase64Encoded))
		}

		newReq, err := http.NewRequestWithContext(r.Context(), reqData.Method, reqData.URL, bodyReader)
		if err != nil {
			slog.Error("failed to create internal request", "error", err)
			http.Error(w, "Failed to create internal request", http.StatusInternalServerError)
			return
		}
		for k, v := range reqData.Headers {
			for _, val := range v {
				newReq.Header.Add(k, val)
			}
		}
		if len(reqData.Query) > 0 && newReq.URL.RawQuery == "" {
			q := newReq.URL.Query()
			for k, v := range reqData.Query {
				q.Set(k, v)
			}
			newReq.URL.RawQuery = q.Encode()
		}

		slog.Debug("processing wrapped HTTP request", "method", newReq.Method, "path", newReq.URL.Path)

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, newReq)

		result := recorder.Result()
		respBody, _ := io.ReadAll(result.Body)
		result.Body.Close()

		headers := make(map[string]string, len(result.Header))
		for k, v := range result.Header {
			headers[k] = v[0]
		}

		var resp HTTPTriggerResponse
		resp.Outputs.Res.StatusCode = result.StatusCode
		resp.Outputs.Res.Headers = headers
		resp.Outputs.Res.Body = string(respBody)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to encode HTTP trigger response", "error", err)
		}
	}
}
