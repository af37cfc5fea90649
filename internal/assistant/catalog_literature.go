package assistant

import (
	"github.com/lexrag/aigateway/internal/adapters/outbound/toolhttp"
	"github.com/lexrag/aigateway/internal/domain"
)

func literatureTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        "search_literature",
			Description: "Search medical and scientific literature using the vector database. Returns relevant research papers and medical knowledge about a topic.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"topic": {Type: "string", Description: "Research topic or medical condition to search for (e.g., 'Lynch syndrome', 'cervical radiculopathy')", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceLiterature,
				Method:  "GET",
				Path:    "/search/literature/{topic}",
			},
			ProgressMessage: "📚 Searching medical research literature...",
			CompleteMessage: "✅ Found relevant medical research",
		},
	}
}
