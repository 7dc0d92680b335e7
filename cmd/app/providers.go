package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/elchin/deskhelp/internal/domain/knowledge"
	"github.com/elchin/deskhelp/internal/domain/qa"
	"github.com/elchin/deskhelp/internal/domain/tickets"
	"github.com/elchin/deskhelp/internal/infra/ai"
	"github.com/elchin/deskhelp/internal/infra/config"
	"github.com/elchin/deskhelp/internal/infra/knowledge/chunker"
	knowledgequeue "github.com/elchin/deskhelp/internal/infra/knowledge/queue"
	knowledgerepo "github.com/elchin/deskhelp/internal/infra/knowledge/repo"
	knowledgestorage "github.com/elchin/deskhelp/internal/infra/knowledge/storage"
	"github.com/elchin/deskhelp/internal/infra/llm/chatgpt"
	qarepo "github.com/elchin/deskhelp/internal/infra/qa/repo"
	ticketrepo "github.com/elchin/deskhelp/internal/infra/tickets/repo"
)

func provideChatGPTClient(cfg *config.Config, logger *slog.Logger) *chatgpt.Client {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Info("llm api key not set, running with deterministic fallbacks")
		return nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.RequestTimeout)
	if err != nil {
		logger.Error("failed to initialize llm client, running with deterministic fallbacks", "error", err)
		return nil
	}
	return client
}

func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideDocumentRepository(pool *pgxpool.Pool) knowledge.DocumentRepository {
	if pool == nil {
		return knowledgerepo.NewMemoryDocumentRepository()
	}
	return knowledgerepo.NewPostgresDocumentRepository(pool)
}

func provideFileRepository(pool *pgxpool.Pool) knowledge.FileObjectRepository {
	if pool == nil {
		return knowledgerepo.NewMemoryFileRepository()
	}
	return knowledgerepo.NewPostgresFileRepository(pool)
}

func provideChunkRepository(pool *pgxpool.Pool) knowledge.ChunkRepository {
	if pool == nil {
		return knowledgerepo.NewMemoryChunkRepository()
	}
	return knowledgerepo.NewPostgresChunkRepository(pool)
}

func provideHistoryRepository(pool *pgxpool.Pool) qa.HistoryRepository {
	if pool == nil {
		return qarepo.NewMemoryHistoryRepository()
	}
	return qarepo.NewPostgresHistoryRepository(pool)
}

func provideTicketRepository(pool *pgxpool.Pool) tickets.TicketRepository {
	if pool == nil {
		return ticketrepo.NewMemoryTicketRepository()
	}
	return ticketrepo.NewPostgresTicketRepository(pool)
}

func provideRuleRepository(pool *pgxpool.Pool) tickets.RuleRepository {
	if pool == nil {
		return ticketrepo.NewMemoryRuleRepository(defaultRoutingRules()...)
	}
	return ticketrepo.NewPostgresRuleRepository(pool)
}

// defaultRoutingRules seed the memory rule store so rule-based routing works
// out of the box in local development.
func defaultRoutingRules() []tickets.RoutingRule {
	now := time.Now()
	return []tickets.RoutingRule{
		{Name: "account access", Keywords: "password,parol,login,vpn,access", Department: tickets.DepartmentIT, Priority: 100, IsActive: true, Accuracy: 80, CreatedAt: now},
		{Name: "payroll", Keywords: "salary,maas,payroll,reimbursement,invoice", Department: tickets.DepartmentFinance, Priority: 90, IsActive: true, Accuracy: 80, CreatedAt: now},
		{Name: "leave requests", Keywords: "vacation,leave,mezuniyyet,sick", Department: tickets.DepartmentHR, Priority: 90, IsActive: true, Accuracy: 80, CreatedAt: now},
	}
}

func provideObjectStorage(cfg *config.Config, logger *slog.Logger) knowledge.ObjectStorage {
	if strings.TrimSpace(cfg.Storage.Endpoint) == "" {
		logger.Info("object storage endpoint not set, using memory storage")
		return knowledgestorage.NewMemoryStorage()
	}
	store, err := knowledgestorage.NewMinioStorage(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.Region, logger)
	if err != nil {
		logger.Error("failed to initialize object storage, using memory storage", "error", err)
		return knowledgestorage.NewMemoryStorage()
	}
	return store
}

func provideJobQueue(cfg *config.Config, logger *slog.Logger) knowledgequeue.HandlerQueue {
	if cfg.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to immediate queue", "error", err)
			return knowledgequeue.NewImmediateQueue(nil)
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to immediate queue", "error", err)
			return knowledgequeue.NewImmediateQueue(nil)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to immediate queue", "error", err)
		} else {
			logger.Info("valkey job queue enabled", "addr", cfg.Valkey.Addr)
			return knowledgequeue.NewValkeyQueue(client, "deskhelp:jobs", logger)
		}
	}
	return knowledgequeue.NewImmediateQueue(nil)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideChunker(cfg *config.Config) knowledge.Chunker {
	return chunker.NewSentenceChunker(cfg.Knowledge.MaxChunkChars, cfg.Knowledge.OverlapSentences)
}

func provideEmbedder(cfg *config.Config, client *chatgpt.Client, logger *slog.Logger) knowledge.Embedder {
	var primary knowledge.Embedder
	if client != nil {
		primary = ai.NewChatGPTEmbedder(client, cfg.LLM.EmbeddingModel, logger)
	}
	return ai.NewResilientEmbedder(primary, cfg.Knowledge.VectorDim, logger)
}

func provideKnowledgeService(cfg *config.Config, docs knowledge.DocumentRepository, files knowledge.FileObjectRepository, chunks knowledge.ChunkRepository, storage knowledge.ObjectStorage, embedder knowledge.Embedder, textChunker knowledge.Chunker, queue knowledgequeue.HandlerQueue, logger *slog.Logger) *knowledge.Service {
	svc := knowledge.NewService(knowledge.Config{
		MaxFileBytes: cfg.Knowledge.MaxFileBytes,
		VectorDim:    cfg.Knowledge.VectorDim,
	}, docs, files, chunks, storage, embedder, textChunker, queue, logger)
	queue.SetHandler(svc.HandleJob)
	return svc
}

func provideKeywordMatcher(cfg *config.Config) *qa.KeywordMatcher {
	return qa.NewKeywordMatcher(qa.KeywordMatcherOptions{
		Threshold:      cfg.QA.KeywordThreshold,
		Floor:          cfg.QA.KeywordFloor,
		Limit:          cfg.QA.MaxSources,
		ExtraStopWords: cfg.QA.ExtraStopWords,
		ExtraSynonyms:  cfg.QA.ExtraSynonyms,
	})
}

func provideChatCompleter(cfg *config.Config, client *chatgpt.Client) qa.ChatCompleter {
	if client == nil {
		return nil
	}
	return ai.NewChatGPTCompleter(client, cfg.LLM.Model, cfg.LLM.Temperature)
}

func provideComposer(completer qa.ChatCompleter, logger *slog.Logger) *qa.Composer {
	return qa.NewComposer(completer, logger)
}

func provideQAService(cfg *config.Config, docs knowledge.DocumentRepository, chunks knowledge.ChunkRepository, embedder knowledge.Embedder, matcher *qa.KeywordMatcher, composer *qa.Composer, history qa.HistoryRepository, logger *slog.Logger) *qa.Service {
	return qa.NewService(qa.Config{
		SimilarityThreshold: cfg.QA.SimilarityThreshold,
		MaxSources:          cfg.QA.MaxSources,
		AllowScopeWidening:  cfg.QA.AllowScopeWidening,
	}, docs, chunks, embedder, matcher, composer, history, logger)
}

func provideTicketRouter(cfg *config.Config, rules tickets.RuleRepository, client *chatgpt.Client, logger *slog.Logger) *tickets.Router {
	routerCfg := tickets.RouterConfig{
		AIEnabled:         cfg.Routing.AIEnabled,
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.Temperature,
		DefaultDepartment: cfg.Routing.DefaultDepartment,
	}
	if client == nil {
		return tickets.NewRouter(routerCfg, rules, nil, logger)
	}
	return tickets.NewRouter(routerCfg, rules, client, logger)
}

func provideTicketService(cfg *config.Config, repo tickets.TicketRepository, router *tickets.Router, client *chatgpt.Client, logger *slog.Logger) *tickets.Service {
	ticketCfg := tickets.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	}
	if client == nil {
		return tickets.NewService(ticketCfg, repo, router, nil, logger)
	}
	return tickets.NewService(ticketCfg, repo, router, client, logger)
}
