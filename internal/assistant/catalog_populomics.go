package assistant

import (
	"github.com/lexrag/aigateway/internal/adapters/outbound/toolhttp"
	"github.com/lexrag/aigateway/internal/domain"
)

func populomicsTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        "get_environmental_risk",
			Description: "Get environmental health risk factors for a specific geographic location, including pollutants, allergens, and environmental exposures.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"location": {Type: "string", Description: "Geographic location (city, region, or country)", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServicePopulomics,
				Method:  "GET",
				Path:    "/analyze/environmental_risk/{location}",
			},
			ProgressMessage: "🌍 Analyzing environmental health factors for the location...",
			CompleteMessage: "✅ Retrieved data from environmental health database",
		},
		{
			Name:        "get_disease_risk",
			Description: "Get population-level disease risk data and genetic associations for a specific disease or condition.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"disease": {Type: "string", Description: "Disease or condition name (e.g., 'breast cancer', 'Lynch syndrome', 'type 2 diabetes')", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServicePopulomics,
				Method:  "GET",
				Path:    "/analyze/disease_risk/{disease}",
			},
			ProgressMessage: "🩺 Looking up population risk data for the disease...",
			CompleteMessage: "✅ Retrieved data from disease risk database",
		},
		{
			Name:        "risk_assessment",
			Description: "Perform comprehensive health risk assessment for the user across multiple genetic and environmental factors. Use when the user asks about overall health risks or specific conditions.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"condition": {Type: "string", Description: "Optional specific condition to assess (e.g., 'cardiovascular', 'cancer', 'alzheimer')"},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServicePopulomics,
				Method:  "POST",
				Path:    "/analyze/risk_assessment/{user_id}",
			},
			ProgressMessage: "📈 Assessing your health risk using genetic and environmental factors...",
			CompleteMessage: "✅ Retrieved data from comprehensive risk analysis system",
		},
	}
}
