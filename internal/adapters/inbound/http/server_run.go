package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/lexrag/aigateway/internal/domain"
	"github.com/lexrag/aigateway/internal/telemetry"
	"github.com/lexrag/aigateway/internal/usecases"
)

// GatewayServer is the REST and MCP HTTP server of the AI gateway.
type GatewayServer struct {
	Port                       int                          `config:"HTTP_PORT" default:"8080"`
	DefaultModel               string                       `config:"LLM_MODEL"`
	Logger                     *log.Logger                  `resolve:""`
	ProcessQueryUseCase        usecases.ProcessQuery        `resolve:""`
	ListHistoryUseCase         usecases.ListHistory         `resolve:""`
	SearchHistoryUseCase       usecases.SearchHistory       `resolve:""`
	ResetConversationUseCase   usecases.ResetConversation   `resolve:""`
	ListToolsUseCase           usecases.ListTools           `resolve:""`
	ListAvailableModelsUseCase usecases.ListAvailableModels `resolve:""`
	Registry                   domain.ToolRegistry          `resolve:""`
	Executor                   domain.ToolExecutor          `resolve:""`
}

// Run starts the HTTP server for the GatewayServer.
func (api GatewayServer) Run(ctx context.Context) error {

	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat/{user_id}", api.Chat)
	mux.HandleFunc("POST /chat/{user_id}/stream", api.StreamChat)
	mux.HandleFunc("GET /chat/{user_id}/history", api.History)
	mux.HandleFunc("GET /chat/{user_id}/history/search", api.SearchHistory)
	mux.HandleFunc("POST /chat/{user_id}/new-conversation", api.NewConversation)
	mux.HandleFunc("GET /tools/available", api.ListTools)
	mux.HandleFunc("GET /models", api.ListModels)
	mux.HandleFunc("GET /healthz", api.Healthz)

	// MCP clients get the same catalog over the streamable transport.
	mux.Handle("/mcp", api.MCPHandler())

	// Register introspection endpoint for debugging and testing purposes
	mux.HandleFunc("/introspect", IntrospectHandler)

	var h http.Handler = telemetry.Middleware("aigateway-api")(mux)

	// Apply CORS at the top-level so preflight requests hit it, too.
	h = cors.AllowAll().Handler(h)

	s := &http.Server{
		Handler: h,
		Addr:    fmt.Sprintf(":%d", api.Port),
	}

	errCh := make(chan error, 1)
	go func() {
		api.Logger.Printf("GatewayServer: Listening on port %d", api.Port)
		errCh <- s.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.Shutdown(shutdownCtx)
		if err != nil {
			api.Logger.Printf("GatewayServer: error during shutdown: %v", err)
		} else {
			api.Logger.Println("GatewayServer: stopped")
		}
		return err
	case err := <-errCh:
		return err
	}
}

// IsReady checks if the GatewayServer is ready by performing a health check.
func (api GatewayServer) IsReady(ctx context.Context) error {
	resp, err := http.Get(fmt.Sprintf("http://:%d/healthz", api.Port))
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

// Healthz reports liveness of the gateway process.
func (api GatewayServer) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResp{Status: "ok"})
}
