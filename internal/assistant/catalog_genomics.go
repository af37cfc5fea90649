package assistant

import (
	"github.com/lexrag/aigateway/internal/adapters/outbound/toolhttp"
	"github.com/lexrag/aigateway/internal/domain"
)

func genomicsTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        "analyze_gene",
			Description: "Analyze a specific gene using the genomic record database. Returns comprehensive analysis including variants, clinical significance, tissue expression, and protein connections.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"gene_symbol": {Type: "string", Description: "Official gene symbol (e.g., BRCA1, TP53, APOE, MLH1)", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceGenomics,
				Method:  "GET",
				Path:    "/analyze/gene/{gene_symbol}",
			},
			ProgressMessage: "🔬 Searching genomic records for gene variants and clinical data...",
			CompleteMessage: "✅ Found gene data: variants, expression patterns, and clinical significance",
		},
		{
			Name:        "analyze_variant",
			Description: "Analyze a specific genetic variant (SNP or mutation) using the genomic database. Returns clinical significance, population frequencies, and disease associations.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"variant_id": {Type: "string", Description: "Variant identifier (rsID like rs7412, or genomic coordinate)", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceGenomics,
				Method:  "GET",
				Path:    "/analyze/variant/{variant_id}",
			},
			ProgressMessage: "🔍 Analyzing variant in clinical variant database for disease associations...",
			CompleteMessage: "✅ Retrieved variant clinical significance and population frequencies",
		},
		{
			Name:        "analyze_splice_impact",
			Description: "Analyze splice site impact for a gene or variant. Returns transcript-specific splice predictions, tissue dominance for each transcript, and anatomy mappings. Essential for understanding tissue-specific disease manifestation.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"gene_or_variant": {Type: "string", Description: "Gene symbol (e.g., BRCA1) or variant ID (e.g., rs123456)", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceGenomics,
				Method:  "GET",
				Path:    "/analyze/splice/{gene_or_variant}",
			},
			ProgressMessage: "🧬 Analyzing splice impact across splice predictions and tissue expression...",
			CompleteMessage: "✅ Found splice predictions and tissue dominance",
		},
		{
			Name:        "analyze_regulatory_variant",
			Description: "Interpret non-coding/regulatory variants using ENCODE data. Returns overlapping regulatory elements (enhancers, promoters), target genes with confidence scores, expression impact by tissue, and phenotype priors.",
			Parameters: domain.ToolParameters{
				Type: "object",
				Properties: map[string]domain.ToolParameterDetail{
					"variant_id": {Type: "string", Description: "Variant identifier (rsID or genomic coordinate like chr1:12345:A:G)", Required: true},
				},
			},
			Binding: domain.ToolBinding{
				Service: toolhttp.ServiceGenomics,
				Method:  "GET",
				Path:    "/analyze/regulatory/{variant_id}",
			},
			ProgressMessage: "🎯 Analyzing variant against ENCODE regulatory elements...",
			CompleteMessage: "✅ Found regulatory elements and target genes",
		},
	}
}
