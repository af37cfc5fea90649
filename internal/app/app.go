package app

import (
	"github.com/cleitonmarx/symbiont"

	"github.com/lexrag/aigateway/internal/adapters/inbound/http"
	"github.com/lexrag/aigateway/internal/adapters/inbound/workers"
	"github.com/lexrag/aigateway/internal/adapters/outbound/config"
	"github.com/lexrag/aigateway/internal/adapters/outbound/log"
	"github.com/lexrag/aigateway/internal/adapters/outbound/modelrunner"
	"github.com/lexrag/aigateway/internal/adapters/outbound/postgres"
	"github.com/lexrag/aigateway/internal/adapters/outbound/pubsub"
	"github.com/lexrag/aigateway/internal/adapters/outbound/time"
	"github.com/lexrag/aigateway/internal/adapters/outbound/toolhttp"
	"github.com/lexrag/aigateway/internal/assistant"
	"github.com/lexrag/aigateway/internal/telemetry"
	"github.com/lexrag/aigateway/internal/usecases"
)

// NewAIGateway creates and returns a new instance of the AI gateway application.
func NewAIGateway(initializers ...symbiont.Initializer) *symbiont.App {
	return symbiont.NewApp().
		Initialize(initializers...).
		Initialize(
			&log.InitLogger{},
			&telemetry.InitOpenTelemetry{},
			&telemetry.InitHttpClient{},
			&config.InitVaultProvider{},
			&postgres.InitDB{},
			&postgres.InitUnitOfWork{},
			&postgres.InitChatMessageRepository{},
			&time.InitCurrentTimeProvider{},
			&pubsub.InitClient{},
			&pubsub.InitPublisher{},
			&modelrunner.InitModelClient{},
			&toolhttp.InitToolExecutor{},
			&assistant.InitToolRegistry{},

			&usecases.InitProcessQuery{},
			&usecases.InitListHistory{},
			&usecases.InitSearchHistory{},
			&usecases.InitResetConversation{},
			&usecases.InitListTools{},
			&usecases.InitListAvailableModels{},
			&usecases.InitRelayOutbox{},
		).
		Host(
			&http.GatewayServer{},
			&workers.MessageRelay{},
		).
		Introspect(&MermaidGraphIntrospector{})
}
