//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/elchin/deskhelp/internal/bootstrap"
	"github.com/elchin/deskhelp/internal/infra/config"
	httpiface "github.com/elchin/deskhelp/internal/interface/http"
	"github.com/elchin/deskhelp/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideChatGPTClient,
		providePostgresPool,
		provideDocumentRepository,
		provideFileRepository,
		provideChunkRepository,
		provideHistoryRepository,
		provideTicketRepository,
		provideRuleRepository,
		provideObjectStorage,
		provideJobQueue,
		provideChunker,
		provideEmbedder,
		provideKnowledgeService,
		provideKeywordMatcher,
		provideChatCompleter,
		provideComposer,
		provideQAService,
		provideTicketRouter,
		provideTicketService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
