package http

import (
	"net/http"

	"github.com/lexrag/aigateway/internal/domain"
)

// ListTools returns the gateway's tool catalog.
func (api GatewayServer) ListTools(w http.ResponseWriter, r *http.Request) {
	tools := api.ListToolsUseCase.Query(r.Context())

	resp := ToolListResp{Tools: []ToolResp{}}
	for _, tool := range tools {
		resp.Tools = append(resp.Tools, ToolResp{
			Name:        tool.Name,
			Description: tool.Description,
			Service:     tool.Binding.Service,
			Required:    tool.RequiredParameters(),
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

// ListModels returns the chat-capable models advertised by the model server.
func (api GatewayServer) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := api.ListAvailableModelsUseCase.Query(r.Context())
	if err != nil {
		respondError(w, toError(err))
		return
	}

	resp := ModelListResp{Models: []string{}}
	for _, m := range models {
		if m.Type != domain.ModelType_Chat {
			continue
		}
		resp.Models = append(resp.Models, m.Name)
	}

	respondJSON(w, http.StatusOK, resp)
}
