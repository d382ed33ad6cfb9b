package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"style-assistant-server/modules/common/config"
	"style-assistant-server/modules/common/fence"
	"style-assistant-server/modules/common/logger"
	"style-assistant-server/modules/common/metrics"
	"style-assistant-server/modules/common/middleware"
	"style-assistant-server/modules/common/redis"
	"style-assistant-server/modules/live"
	"style-assistant-server/modules/stylist"
)

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "style-assistant",
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 환경변수 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load config")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	cfg.LogSummary()

	reg := metrics.NewRegistry()

	// 요청 순번: Redis 있으면 공유, 없으면 메모리
	var sequencer fence.Sequencer = fence.NewMemorySequencer(cfg.FenceTTL)
	rdb, err := redis.Connect(ctx, cfg)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("⚠️  Redis unavailable, request fencing uses process memory")
	case rdb != nil:
		defer rdb.Close()
		sequencer = fence.NewRedisSequencer(rdb, cfg.FenceTTL)
	default:
		log.Info().Msg("ℹ️  REDIS_HOST not set, request fencing uses process memory")
	}

	service, err := stylist.NewFromConfig(ctx, cfg, stylist.WithMetrics(reg))
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create Gemini client")
	}
	handler := stylist.NewHandler(service, sequencer, cfg.MaxUploadBytes)

	hub := live.NewHub(handler, reg, cfg.MaxUploadBytes)
	hub.StartCleanup(ctx)

	// 라우터 설정
	r := mux.NewRouter()
	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger(reg))

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/metrics", reg.Handler).Methods("GET")
	handler.RegisterRoutes(r)
	hub.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("port", cfg.Port).Msg("🚀 Style Assistant Server starting")
	log.Info().Msgf("👗 API: http://localhost:%s/api/{outfit,trends,items/analyze-text,items/analyze-image}", cfg.Port)
	log.Info().Msgf("📡 WebSocket endpoint: ws://localhost:%s/ws?view=<id>", cfg.Port)
	log.Info().Msgf("❤️  Health check: http://localhost:%s/health", cfg.Port)
	log.Info().Msgf("📊 Metrics: http://localhost:%s/metrics", cfg.Port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	// 서버 시작
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
	log.Info().Msg("👋 Server stopped")
}
