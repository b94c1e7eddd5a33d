package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/oranihq/orani-voice-service/internal/adapters/fcm"
	"github.com/oranihq/orani-voice-service/internal/adapters/storage"
	"github.com/oranihq/orani-voice-service/internal/adapters/summarizer"
	"github.com/oranihq/orani-voice-service/internal/adapters/vapi"
	"github.com/oranihq/orani-voice-service/internal/cache"
	"github.com/oranihq/orani-voice-service/internal/config"
	"github.com/oranihq/orani-voice-service/internal/handler"
	"github.com/oranihq/orani-voice-service/internal/notify"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/internal/services/callrouter"
	"github.com/oranihq/orani-voice-service/internal/services/history"
	"github.com/oranihq/orani-voice-service/internal/services/messaging"
	"github.com/oranihq/orani-voice-service/internal/services/provisioner"
	"github.com/oranihq/orani-voice-service/internal/services/reconciler"
	"github.com/oranihq/orani-voice-service/internal/services/summary"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"github.com/oranihq/orani-voice-service/pkg/redis"
	"github.com/oranihq/orani-voice-service/pkg/twilio"
	"go.uber.org/zap"
)

// Server wires the application together and runs the HTTP listener.
type Server struct {
	config         *config.AppConfig
	router         *mux.Router
	handlerManager *handler.HandlerManager
	dispatcher     *notify.Dispatcher
}

// NewServer builds all services and registers the routes.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	ctx := context.Background()

	repoManager, err := repository.NewRepositoryManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	// Optional Redis: summary dedup fast path and a transcript buffer
	// shared across instances. The DB unique index is the real dedup
	// guarantee and the in-memory buffer serves a single instance, so a
	// missing Redis only logs a warning.
	var claims summary.ClaimStore
	var transcripts cache.TranscriptStore = cache.NewTranscriptCache(time.Hour)
	if cfg.RedisAddr != "" {
		redisSvc, err := redis.NewService(&redis.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Base().Warn("Redis unavailable, running without summary claim store", zap.Error(err))
		} else {
			claims = redisSvc
			transcripts = cache.NewRedisTranscriptStore(redisSvc, time.Hour)
		}
	}

	vapiClient := vapi.NewClient(cfg.VapiBaseURL, cfg.VapiAPIKey, cfg.UpstreamTimeout)
	summarizerClient := summarizer.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.SummaryModel)
	pushClient := fcm.NewClient(ctx, cfg.FirebaseCredentialsFile)

	mediaStore, err := storage.NewMediaStore(ctx, cfg.MediaBucket)
	if err != nil {
		logger.Base().Warn("Media storage unavailable, MMS attachments will keep provider URLs", zap.Error(err))
		mediaStore, _ = storage.NewMediaStore(ctx, "")
	}

	tokenService := twilio.NewAccessTokenService(
		cfg.TwilioAccountSID, cfg.TwilioAPIKeySID, cfg.TwilioAPIKeySecret, cfg.TwiMLAppSID)
	messagingClient := twilio.NewMessagingClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)

	broadcaster := notify.NewBroadcaster()
	dispatcher := notify.NewDispatcher(pushClient, 10*time.Second)

	provisionerSvc := provisioner.NewService(vapiClient, repoManager.Directory(), repoManager.Profiles(), cfg)
	callRouter := callrouter.NewService(repoManager.Directory(), repoManager.Profiles(), cfg, dispatcher)
	summaryPipeline := summary.NewPipeline(vapiClient, summarizerClient, repoManager.Directory(), repoManager.Summaries(), claims)
	reconcilerSvc := reconciler.NewService(repoManager.Directory(), repoManager.Profiles(), summaryPipeline, transcripts, broadcaster, dispatcher)
	messagingSvc := messaging.NewService(messagingClient, mediaStore, repoManager.Directory(), repoManager.Profiles(), repoManager.Messages(), dispatcher)
	historySvc := history.NewService(repoManager.Summaries(), repoManager.Messages())

	handlerManager := handler.NewHandlerManager(handler.Dependencies{
		RepoManager: repoManager,
		Provisioner: provisionerSvc,
		CallRouter:  callRouter,
		Reconciler:  reconcilerSvc,
		Messaging:   messagingSvc,
		History:     historySvc,
		Broadcaster: broadcaster,
		Transcripts: transcripts,
		Tokens:      tokenService,
		VapiClient:  vapiClient,
	})

	router := mux.NewRouter()
	handlerManager.SetupAllRoutes(router)

	return &Server{
		config:         cfg,
		router:         router,
		handlerManager: handlerManager,
		dispatcher:     dispatcher,
	}, nil
}

// Start runs the HTTP listener until it fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.config.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // the SSE handler clears its own deadline
		IdleTimeout:  60 * time.Second,
	}

	logger.Base().Info("Starting server", zap.String("addr", addr))
	return server.ListenAndServe()
}

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	if _, err := logger.Init(os.Getenv("LOG_ENV")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	cfg := config.LoadFromEnv()

	server, err := NewServer(cfg)
	if err != nil {
		logger.Base().Fatal("Failed to build server", zap.Error(err))
	}
	defer server.dispatcher.Stop()

	if err := server.Start(); err != nil {
		logger.Base().Fatal("Server stopped", zap.Error(err))
	}
}
