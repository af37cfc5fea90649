package toolhttp

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexrag/aigateway/internal/domain"
)

type stubRegistry struct {
	tools map[string]domain.ToolDefinition
}

func (r stubRegistry) Lookup(name string) (domain.ToolDefinition, bool) {
	def, ok := r.tools[name]
	return def, ok
}

func (r stubRegistry) List() []domain.ToolDefinition { return nil }

func (r stubRegistry) ListRelevant(context.Context, string) []domain.ToolDefinition { return nil }

func (r stubRegistry) StatusMessage(string) string { return "" }

func (r stubRegistry) CompleteMessage(string) string { return "" }

func newExecutor(t *testing.T, serverURL string, timeout time.Duration) Executor {
	t.Helper()

	registry := stubRegistry{tools: map[string]domain.ToolDefinition{
		"analyze_gene": {
			Name: "analyze_gene",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"gene_symbol": {Type: "string", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: ServiceGenomics,
				Method:  http.MethodGet,
				Path:    "/gene/{gene_symbol}",
			},
		},
		"search_literature": {
			Name: "search_literature",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"query":       {Type: "string", Required: true},
					"max_results": {Type: "integer"},
				},
			},
			Binding: domain.ToolBinding{
				Service:     ServiceLiterature,
				Method:      http.MethodGet,
				Path:        "/search",
				QueryParams: []string{"query", "max_results"},
			},
		},
		"risk_assessment": {
			Name: "risk_assessment",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"conditions": {Type: "array", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: ServicePopulomics,
				Method:  http.MethodPost,
				Path:    "/risk-assessment/{user_id}",
			},
		},
	}}

	services := map[string]string{
		ServiceGenomics:   serverURL,
		ServiceLiterature: serverURL,
		ServicePopulomics: serverURL,
	}
	return NewExecutor(registry, services, http.DefaultClient, timeout, log.New(&strings.Builder{}, "", 0))
}

func TestExecutor_Execute_GetWithPathParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/gene/BRCA1", r.URL.Path)
		_, _ = w.Write([]byte(`{"gene":"BRCA1","function":"tumor suppressor"}`))
	}))
	defer server.Close()

	executor := newExecutor(t, server.URL, time.Second)
	result := executor.Execute(t.Context(), "user-1", domain.ToolCall{
		ID: "call_1", Name: "analyze_gene", Arguments: `{"gene_symbol":"BRCA1"}`,
	})

	assert.Equal(t, domain.ToolStatus_OK, result.Status)
	assert.Equal(t, "call_1", result.ToolCallID)
	assert.JSONEq(t, `{"gene":"BRCA1","function":"tumor suppressor"}`, result.Payload)
	assert.GreaterOrEqual(t, result.DurationMS, int64(0))
}

func TestExecutor_Execute_QueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "BRCA1 variants", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("max_results"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	executor := newExecutor(t, server.URL, time.Second)
	result := executor.Execute(t.Context(), "user-1", domain.ToolCall{
		ID: "call_2", Name: "search_literature", Arguments: `{"query":"BRCA1 variants","max_results":5}`,
	})

	assert.Equal(t, domain.ToolStatus_OK, result.Status)
}

func TestExecutor_Execute_PostInjectsUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/risk-assessment/user-42", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"diabetes"}, body["conditions"])
		_, _ = w.Write([]byte(`{"risk":"moderate"}`))
	}))
	defer server.Close()

	executor := newExecutor(t, server.URL, time.Second)
	result := executor.Execute(t.Context(), "user-42", domain.ToolCall{
		ID: "call_3", Name: "risk_assessment", Arguments: `{"conditions":["diabetes"]}`,
	})

	assert.Equal(t, domain.ToolStatus_OK, result.Status)
}

func TestExecutor_Execute_ValidationFailuresSkipHTTP(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	executor := newExecutor(t, server.URL, time.Second)

	tests := map[string]struct {
		call          domain.ToolCall
		expectedError string
	}{
		"unknown tool": {
			call:          domain.ToolCall{ID: "c", Name: "teleport", Arguments: `{}`},
			expectedError: "unknown_tool",
		},
		"malformed json arguments": {
			call:          domain.ToolCall{ID: "c", Name: "analyze_gene", Arguments: `{gene`},
			expectedError: "invalid_arguments",
		},
		"missing required parameter": {
			call:          domain.ToolCall{ID: "c", Name: "analyze_gene", Arguments: `{}`},
			expectedError: "invalid_arguments",
		},
		"wrong parameter type": {
			call:          domain.ToolCall{ID: "c", Name: "analyze_gene", Arguments: `{"gene_symbol":42}`},
			expectedError: "invalid_arguments",
		},
		"unexpected parameter": {
			call:          domain.ToolCall{ID: "c", Name: "analyze_gene", Arguments: `{"gene_symbol":"BRCA1","x":1}`},
			expectedError: "invalid_arguments",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result := executor.Execute(t.Context(), "user-1", tt.call)
			assert.Equal(t, domain.ToolStatus_Error, result.Status)

			var payload map[string]any
			require.NoError(t, json.Unmarshal([]byte(result.Payload), &payload))
			assert.Equal(t, tt.expectedError, payload["error"])
		})
	}

	assert.Zero(t, hits, "validation failures must not reach the service")
}

func TestExecutor_Execute_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`backend down`))
	}))
	defer server.Close()

	executor := newExecutor(t, server.URL, time.Second)
	result := executor.Execute(t.Context(), "user-1", domain.ToolCall{
		ID: "call_4", Name: "analyze_gene", Arguments: `{"gene_symbol":"TP53"}`,
	})

	assert.Equal(t, domain.ToolStatus_Error, result.Status)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Payload), &payload))
	assert.Equal(t, "upstream_error", payload["error"])
	assert.Equal(t, float64(http.StatusBadGateway), payload["status_code"])
	assert.Equal(t, "backend down", payload["body"])
}

func TestExecutor_Execute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	executor := newExecutor(t, server.URL, 30*time.Millisecond)
	result := executor.Execute(t.Context(), "user-1", domain.ToolCall{
		ID: "call_5", Name: "analyze_gene", Arguments: `{"gene_symbol":"BRCA2"}`,
	})

	assert.Equal(t, domain.ToolStatus_Timeout, result.Status)
}

func TestExecutor_Execute_ConnectionFailure(t *testing.T) {
	executor := newExecutor(t, "http://127.0.0.1:1", time.Second)
	result := executor.Execute(t.Context(), "user-1", domain.ToolCall{
		ID: "call_6", Name: "analyze_gene", Arguments: `{"gene_symbol":"BRCA2"}`,
	})

	assert.Equal(t, domain.ToolStatus_Error, result.Status)
	assert.Contains(t, result.Payload, "service_unavailable")
}
