package assistant

import (
	"github.com/lexrag/aigateway/internal/adapters/outbound/toolhttp"
	"github.com/lexrag/aigateway/internal/domain"
)

// Catalog returns every tool the gateway exposes to the model. The catalog
// is assembled once at startup; registration order does not matter because
// the registry sorts by name.
func Catalog() []domain.ToolDefinition {
	var defs []domain.ToolDefinition
	defs = append(defs, genomicsTools()...)
	defs = append(defs, anatomicsTools()...)
	defs = append(defs, literatureTools()...)
	defs = append(defs, metabolicsTools()...)
	defs = append(defs, populomicsTools()...)
	defs = append(defs, digitalTwinTools()...)
	defs = append(defs, userTools()...)
	return defs
}

func userTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        "get_user_genomics",
			Description: "Retrieve the user's personal genomic data from their uploaded DNA file. Use this to see what actual variants the user has.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"gene_filter": {Type: "string", Description: "Optional gene symbol to filter results (e.g., BRCA1)"},
				},
			},
			Binding: domain.ToolBinding{
				Service:     toolhttp.ServiceUsers,
				Method:      "GET",
				Path:        "/users/{user_id}/genomics",
				QueryParams: []string{"gene_filter"},
			},
			ProgressMessage: "🧬 Loading your personal genetic data from uploaded DNA file...",
			CompleteMessage: "✅ Loaded your personal genetic variants",
		},
	}
}
