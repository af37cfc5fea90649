package modelrunner

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/cleitonmarx/symbiont/depend"

	"github.com/lexrag/aigateway/internal/domain"
	"github.com/lexrag/aigateway/internal/telemetry"
)

// GatewayModelClient adapts APIClient to the domain model interfaces.
type GatewayModelClient struct {
	client           APIClient
	logger           *log.Logger
	embeddingFactory EmbeddingFactory
}

// NewGatewayModelClient creates a new adapter.
func NewGatewayModelClient(client APIClient, logger *log.Logger) GatewayModelClient {
	return GatewayModelClient{client: client, logger: logger, embeddingFactory: embeddingFactory{}}
}

// Query implements domain.ModelClient.
func (c GatewayModelClient) Query(ctx context.Context, query domain.ModelQuery) (domain.ModelTurn, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	resp, err := c.client.Chat(spanCtx, toChatRequest(query))
	if err != nil {
		transportErr := domain.NewModelTransportErr(err.Error())
		telemetry.RecordErrorAndStatus(span, transportErr)
		return domain.ModelTurn{}, transportErr
	}
	if len(resp.Choices) == 0 {
		transportErr := domain.NewModelTransportErr("no choices in response")
		telemetry.RecordErrorAndStatus(span, transportErr)
		return domain.ModelTurn{}, transportErr
	}

	turn := toModelTurn(resp)
	if turn.Kind == domain.ModelTurnKind_FinalAnswer && turn.Text == "" {
		c.logger.Printf("GatewayModelClient: model returned neither content nor tool calls (finish_reason=%s)",
			resp.Choices[0].FinishReason)
	}
	telemetry.RecordErrorAndStatus(span, nil)
	return turn, nil
}

// AvailableModels implements domain.ModelClient.
func (c GatewayModelClient) AvailableModels(ctx context.Context) ([]domain.ModelInfo, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	resp, err := c.client.AvailableModels(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}

	models := make([]domain.ModelInfo, len(resp.Data))
	for i, m := range resp.Data {
		modelType := domain.ModelType_Chat
		if strings.Contains(m.ID, "embed") {
			modelType = domain.ModelType_Embedding
		}
		models[i] = domain.ModelInfo{Name: m.ID, Type: modelType}
	}
	return models, nil
}

// VectorizeQuery implements domain.SemanticEncoder.
func (c GatewayModelClient) VectorizeQuery(ctx context.Context, model, query string) (domain.EmbeddingVector, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	prompt := c.embeddingFactory.Get(model).GenerateSearchPrompt(query)
	vec, err := c.embed(spanCtx, model, prompt)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.EmbeddingVector{}, err
	}
	return vec, nil
}

// VectorizeToolDefinition implements domain.SemanticEncoder.
func (c GatewayModelClient) VectorizeToolDefinition(ctx context.Context, model string, tool domain.ToolDefinition) (domain.EmbeddingVector, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	prompt := c.embeddingFactory.Get(model).GenerateToolDefinitionPrompt(tool)
	vec, err := c.embed(spanCtx, model, prompt)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.EmbeddingVector{}, err
	}
	return vec, nil
}

func (c GatewayModelClient) embed(ctx context.Context, model, input string) (domain.EmbeddingVector, error) {
	resp, err := c.client.Embeddings(ctx, EmbeddingsRequest{Model: model, Input: input})
	if err != nil {
		return domain.EmbeddingVector{}, err
	}
	if len(resp.Data) == 0 {
		return domain.EmbeddingVector{}, errors.New("no embedding data in response")
	}
	return domain.EmbeddingVector{
		Vector:      resp.Data[0].Embedding,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

func toModelTurn(resp *ChatResponse) domain.ModelTurn {
	message := resp.Choices[0].Message

	turn := domain.ModelTurn{Kind: domain.ModelTurnKind_FinalAnswer, Text: message.Content}
	if resp.Usage != nil {
		turn.Usage = domain.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	if len(message.ToolCalls) > 0 {
		turn.Kind = domain.ModelTurnKind_ToolRequest
		turn.Text = ""
		turn.ToolCalls = make([]domain.ToolCall, len(message.ToolCalls))
		for i, tc := range message.ToolCalls {
			turn.ToolCalls[i] = domain.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			}
		}
	}
	return turn
}

func toChatRequest(query domain.ModelQuery) ChatRequest {
	req := ChatRequest{
		Model:       query.Model,
		Temperature: query.Temperature,
		MaxTokens:   query.MaxTokens,
		TopP:        query.TopP,
		Messages:    make([]ChatMessage, len(query.Messages)),
	}

	for i, msg := range query.Messages {
		adpMsg := ChatMessage{
			Role:       string(msg.Role),
			ToolCallID: msg.ToolCallID,
			Content:    msg.Content,
		}
		for _, call := range msg.ToolCalls {
			adpMsg.ToolCalls = append(adpMsg.ToolCalls, ToolCall{
				ID:   call.ID,
				Type: "function",
				Function: ToolCallFunction{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		req.Messages[i] = adpMsg
	}

	if len(query.Tools) == 0 {
		// Tool use disabled for this query (forced finalization).
		return req
	}

	req.ToolChoice = "auto"
	req.Tools = make([]Tool, len(query.Tools))
	for i, def := range query.Tools {
		tool := Tool{
			Type: "function",
			Function: ToolFunc{
				Description: def.Description,
				Name:        def.Name,
				Parameters: ToolFuncParameters{
					Type:       def.Parameters.Type,
					Properties: make(map[string]ToolFuncParameterDetail),
					Required:   def.RequiredParameters(),
				},
			},
		}
		for paramName, field := range def.Parameters.Properties {
			tool.Function.Parameters.Properties[paramName] = ToolFuncParameterDetail{
				Type:        field.Type,
				Description: field.Description,
			}
		}
		req.Tools[i] = tool
	}

	return req
}

// InitModelClient initializes the model client dependency.
type InitModelClient struct {
	HttpClient *http.Client `resolve:""`
	Logger     *log.Logger  `resolve:""`
	BaseURL    string       `config:"MODELRUNNER_BASE_URL" default:"http://localhost:1234"`
	APIKey     string       `config:"MODELRUNNER_API_KEY" default:""`
}

// Initialize registers the model client interfaces.
func (i InitModelClient) Initialize(ctx context.Context) (context.Context, error) {
	adapter := NewGatewayModelClient(NewAPIClient(i.BaseURL, i.APIKey, i.HttpClient), i.Logger)
	depend.Register[domain.ModelClient](adapter)
	depend.Register[domain.SemanticEncoder](adapter)
	return ctx, nil
}
