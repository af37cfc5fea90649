package assistant

import (
	"github.com/lexrag/aigateway/internal/adapters/outbound/toolhttp"
	"github.com/lexrag/aigateway/internal/domain"
)

func anatomicsTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        "analyze_organ",
			Description: "Analyze anatomical structures and organs using the anatomical graph database. Returns structure information, gene connections, and tissue relationships.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"organ_name": {Type: "string", Description: "Organ or anatomical structure name (e.g., heart, brain, shoulder, liver)", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceAnatomics,
				Method:  "GET",
				Path:    "/analyze/organ/{organ_name}",
			},
			ProgressMessage: "🫀 Looking up anatomical structure, nerve pathways, and tissue connections...",
			CompleteMessage: "✅ Retrieved anatomical data",
		},
		{
			Name:        "phenotype_to_differential",
			Description: "Map phenotypes (HPO terms or symptoms) to candidate diseases, implicated genes, and anatomy focus. Use for syndrome identification and differential diagnosis. Returns ranked diseases with supporting evidence.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"phenotypes": {Type: "array", Description: "List of HPO terms (e.g., 'HP:0001250') or symptom descriptions (e.g., 'seizures', 'hypotonia')", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceAnatomics,
				Method:  "POST",
				Path:    "/analyze/differential",
			},
			ProgressMessage: "🔍 Mapping phenotypes to candidate diseases via HPO/MONDO ontologies...",
			CompleteMessage: "✅ Mapped phenotypes to candidate diseases and genes",
		},
	}
}
