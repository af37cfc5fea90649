// Package toolhttp dispatches model-requested tool calls as HTTP requests
// against the bound genomics services. Every failure mode is folded into the
// ToolExecutionResult status tag; an execution never returns an error.
package toolhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cleitonmarx/symbiont/depend"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lexrag/aigateway/internal/domain"
	"github.com/lexrag/aigateway/internal/telemetry"
)

// Executor performs one bound HTTP call per tool invocation.
type Executor struct {
	registry domain.ToolRegistry
	services map[string]string
	http     *http.Client
	timeout  time.Duration
	logger   *log.Logger
}

// NewExecutor creates a new Executor. The services map binds service names
// from tool definitions to base URLs.
func NewExecutor(
	registry domain.ToolRegistry,
	services map[string]string,
	httpClient *http.Client,
	timeout time.Duration,
	logger *log.Logger,
) Executor {
	return Executor{
		registry: registry,
		services: services,
		http:     httpClient,
		timeout:  timeout,
		logger:   logger,
	}
}

// Execute implements domain.ToolExecutor.
func (e Executor) Execute(ctx context.Context, userID string, call domain.ToolCall) domain.ToolExecutionResult {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	started := time.Now()
	result := e.execute(spanCtx, userID, call)
	result.DurationMS = time.Since(started).Milliseconds()

	if result.Status != domain.ToolStatus_OK {
		e.logger.Printf("Executor: tool %s finished with status %s: %s", call.Name, result.Status, result.Payload)
		telemetry.RecordErrorAndStatus(span, fmt.Errorf("tool %s: %s", call.Name, result.Status))
		return result
	}
	telemetry.RecordErrorAndStatus(span, nil)
	return result
}

func (e Executor) execute(ctx context.Context, userID string, call domain.ToolCall) domain.ToolExecutionResult {
	def, ok := e.registry.Lookup(call.Name)
	if !ok {
		return errorResult(call, errorPayload("unknown_tool", fmt.Sprintf("tool %s is not registered", call.Name)))
	}

	args, err := parseArguments(call.Arguments)
	if err != nil {
		return errorResult(call, errorPayload("invalid_arguments", err.Error()))
	}
	if err := validateArguments(def, args); err != nil {
		return errorResult(call, errorPayload("invalid_arguments", err.Error()))
	}

	// One deadline covers the single outbound call, response body included.
	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := e.newRequest(reqCtx, def, userID, args)
	if err != nil {
		return errorResult(call, errorPayload("invalid_binding", err.Error()))
	}

	resp, err := e.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.ToolExecutionResult{
				ToolCallID: call.ID,
				Name:       call.Name,
				Status:     domain.ToolStatus_Timeout,
				Payload:    errorPayload("timeout", fmt.Sprintf("tool call exceeded %s", e.timeout)),
			}
		}
		return errorResult(call, errorPayload("service_unavailable", err.Error()))
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
			return domain.ToolExecutionResult{
				ToolCallID: call.ID,
				Name:       call.Name,
				Status:     domain.ToolStatus_Timeout,
				Payload:    errorPayload("timeout", fmt.Sprintf("tool call exceeded %s", e.timeout)),
			}
		}
		return errorResult(call, errorPayload("read_response", err.Error()))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := json.Marshal(map[string]any{
			"error":       "upstream_error",
			"status_code": resp.StatusCode,
			"body":        string(body),
		})
		return errorResult(call, string(payload))
	}

	return domain.ToolExecutionResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Status:     domain.ToolStatus_OK,
		Payload:    string(body),
	}
}

// newRequest builds the one HTTP request bound to the tool definition. Path
// segments of the form {param} are filled from arguments; {user_id} always
// comes from the request path.
func (e Executor) newRequest(ctx context.Context, def domain.ToolDefinition, userID string, args map[string]any) (*http.Request, error) {
	baseURL, ok := e.services[def.Binding.Service]
	if !ok {
		return nil, fmt.Errorf("no base URL configured for service %s", def.Binding.Service)
	}

	path := def.Binding.Path
	consumed := map[string]bool{}
	for strings.Contains(path, "{") {
		start := strings.Index(path, "{")
		end := strings.Index(path, "}")
		if end < start {
			return nil, fmt.Errorf("malformed path template %s", def.Binding.Path)
		}
		param := path[start+1 : end]

		var value string
		if param == "user_id" {
			value = userID
		} else {
			raw, ok := args[param]
			if !ok {
				return nil, fmt.Errorf("missing path parameter %s", param)
			}
			value = fmt.Sprintf("%v", raw)
			consumed[param] = true
		}
		path = path[:start] + url.PathEscape(value) + path[end+1:]
	}

	endpoint, err := url.JoinPath(baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	query := url.Values{}
	for _, param := range def.Binding.QueryParams {
		if raw, ok := args[param]; ok {
			query.Set(param, fmt.Sprintf("%v", raw))
			consumed[param] = true
		}
	}

	var bodyReader io.Reader
	if def.Binding.Method == http.MethodPost {
		body := map[string]any{}
		for name, value := range args {
			if !consumed[name] {
				body[name] = value
			}
		}
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, def.Binding.Method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	return req, nil
}

func parseArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	return args, nil
}

func validateArguments(def domain.ToolDefinition, args map[string]any) error {
	for _, name := range def.RequiredParameters() {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing required parameter %s", name)
		}
	}
	for name, value := range args {
		detail, ok := def.Parameters.Properties[name]
		if !ok {
			return fmt.Errorf("unexpected parameter %s", name)
		}
		if err := checkType(name, detail.Type, value); err != nil {
			return err
		}
	}
	return nil
}

func checkType(name, schemaType string, value any) error {
	switch schemaType {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("parameter %s must be a string", name)
		}
	case "number":
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("parameter %s must be a number", name)
		}
	case "integer":
		f, ok := value.(float64)
		if !ok || f != float64(int64(f)) {
			return fmt.Errorf("parameter %s must be an integer", name)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("parameter %s must be a boolean", name)
		}
	case "array":
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("parameter %s must be an array", name)
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("parameter %s must be an object", name)
		}
	}
	return nil
}

func errorResult(call domain.ToolCall, payload string) domain.ToolExecutionResult {
	return domain.ToolExecutionResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Status:     domain.ToolStatus_Error,
		Payload:    payload,
	}
}

func errorPayload(kind, detail string) string {
	payload, _ := json.Marshal(map[string]string{"error": kind, "detail": detail})
	return string(payload)
}

// InitToolExecutor initializes the tool executor dependency with its own
// instrumented HTTP client. The client deliberately does not retry: the
// executor's contract is exactly one outbound call per invocation.
type InitToolExecutor struct {
	Registry           domain.ToolRegistry `resolve:""`
	Logger             *log.Logger         `resolve:""`
	Timeout            time.Duration       `config:"TOOL_TIMEOUT" default:"60s"`
	UsersBaseURL       string              `config:"USERS_BASE_URL" default:"http://localhost:8007"`
	GenomicsBaseURL    string              `config:"GENOMICS_BASE_URL" default:"http://localhost:8001"`
	AnatomicsBaseURL   string              `config:"ANATOMICS_BASE_URL" default:"http://localhost:8002"`
	LiteratureBaseURL  string              `config:"LITERATURE_BASE_URL" default:"http://localhost:8003"`
	MetabolicsBaseURL  string              `config:"METABOLICS_BASE_URL" default:"http://localhost:8005"`
	PopulomicsBaseURL  string              `config:"POPULOMICS_BASE_URL" default:"http://localhost:8006"`
	DigitalTwinBaseURL string              `config:"DIGITALTWIN_BASE_URL" default:"http://localhost:8008"`
}

// Initialize registers the tool executor in the dependency container.
func (i InitToolExecutor) Initialize(ctx context.Context) (context.Context, error) {
	client := &http.Client{
		Transport: otelhttp.NewTransport(
			http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(telemetry.SpanNameFormatter),
		),
	}

	services := map[string]string{
		ServiceUsers:       i.UsersBaseURL,
		ServiceGenomics:    i.GenomicsBaseURL,
		ServiceAnatomics:   i.AnatomicsBaseURL,
		ServiceLiterature:  i.LiteratureBaseURL,
		ServiceMetabolics:  i.MetabolicsBaseURL,
		ServicePopulomics:  i.PopulomicsBaseURL,
		ServiceDigitalTwin: i.DigitalTwinBaseURL,
	}

	executor := NewExecutor(i.Registry, services, client, i.Timeout, i.Logger)
	depend.Register[domain.ToolExecutor](executor)
	return ctx, nil
}

// Service names used in tool bindings.
const (
	ServiceUsers       = "users"
	ServiceGenomics    = "genomics"
	ServiceAnatomics   = "anatomics"
	ServiceLiterature  = "literature"
	ServiceMetabolics  = "metabolics"
	ServicePopulomics  = "populomics"
	ServiceDigitalTwin = "digitaltwin"
)
