package assistant

import (
	"github.com/lexrag/aigateway/internal/adapters/outbound/toolhttp"
	"github.com/lexrag/aigateway/internal/domain"
)

func metabolicsTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        "get_metabolic_profile",
			Description: "Get metabolic pathway analysis and biochemical profile for the user based on their genetic variants.",
			Parameters: domain.ToolParameters{
				Type:       "object",
				Properties: map[string]domain.ToolParameterDetail{},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceMetabolics,
				Method:  "GET",
				Path:    "/analyze/metabolism/{user_id}",
			},
			ProgressMessage: "⚗️ Analyzing your metabolic pathways and biochemical processing...",
			CompleteMessage: "✅ Retrieved data from metabolic pathway database",
		},
		{
			Name:        "get_drug_metabolism",
			Description: "Analyze how a specific drug is metabolized, including CYP450 enzyme interactions and pharmacogenomic considerations.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"drug_name": {Type: "string", Description: "Drug name (generic or brand name)", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceMetabolics,
				Method:  "GET",
				Path:    "/analyze/drug_metabolism/{drug_name}",
			},
			ProgressMessage: "💊 Looking up how the drug is metabolized by CYP450 enzymes...",
			CompleteMessage: "✅ Retrieved data from pharmacogenomics database",
		},
		{
			Name:        "analyze_drug_interactions",
			Description: "Analyze pharmacogenomic drug interactions for the user based on their CYP450 and other drug metabolism genes. Returns personalized medication guidance.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"medications": {Type: "array", Description: "List of medication names to analyze", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceMetabolics,
				Method:  "POST",
				Path:    "/analyze/drug_interactions/{user_id}",
			},
			ProgressMessage: "⚠️ Analyzing pharmacogenomic interactions with your genetic profile...",
			CompleteMessage: "✅ Retrieved data from drug interaction database",
		},
	}
}
