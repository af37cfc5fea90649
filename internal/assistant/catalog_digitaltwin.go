package assistant

import (
	"github.com/lexrag/aigateway/internal/adapters/outbound/toolhttp"
	"github.com/lexrag/aigateway/internal/domain"
)

func digitalTwinTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        "get_user_digital_twin",
			Description: "Get the user's complete digital twin model with genomic data, demographics, and confidence scores. Always call this first to understand the user's data completeness.",
			Parameters: domain.ToolParameters{
				Type:       "object",
				Properties: map[string]domain.ToolParameterDetail{},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceDigitalTwin,
				Method:  "GET",
				Path:    "/twin/{user_id}/model",
			},
			ProgressMessage: "📊 Loading your personal health profile and genetic data completeness...",
			CompleteMessage: "✅ Retrieved data from your personal health profile",
		},
		{
			Name:        "cross_axis_analysis",
			Description: "Perform integrated analysis across multiple biological systems (genomics, anatomy, literature, metabolics, etc.). Use for complex questions requiring multi-system integration.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"query": {Type: "string", Description: "The analysis question or topic", Required: true},
					"axes":  {Type: "array", Description: "Biological axes to analyze: 'genomics', 'anatomy', 'literature', 'metabolics', 'populomics'", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceDigitalTwin,
				Method:  "POST",
				Path:    "/analyze/cross_axis/{user_id}",
			},
			ProgressMessage: "🔗 Integrating data across biological systems for comprehensive analysis...",
			CompleteMessage: "✅ Retrieved data from multi-system integration engine",
		},
	}
}
