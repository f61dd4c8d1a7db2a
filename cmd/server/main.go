package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/config"
	"github.com/stemsi/theoryexam-backend/internal/database"
	"github.com/stemsi/theoryexam-backend/internal/exam"
	"github.com/stemsi/theoryexam-backend/internal/handler"
	"github.com/stemsi/theoryexam-backend/internal/importer"
	"github.com/stemsi/theoryexam-backend/internal/logger"
	"github.com/stemsi/theoryexam-backend/internal/repository"
	"github.com/stemsi/theoryexam-backend/internal/router"
	"github.com/stemsi/theoryexam-backend/internal/service"
	"github.com/stemsi/theoryexam-backend/internal/validator"
)

// stores bundles the storage contracts selected by STORAGE_DRIVER.
type stores struct {
	sections  repository.SectionStore
	questions repository.QuestionStore
	attempts  repository.AttemptStore
	db        handler.Pinger
	close     func()
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("storage", cfg.StorageDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting theory exam backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Exam Policy ───────────────────────────────────────────────────
	policy, err := config.LoadExamPolicy(cfg.PolicyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load exam policy")
	}
	log.Info().
		Int("full_total", policy.FullQuota.Total()).
		Int("full_pass_mark", policy.FullPassMark).
		Float64("section_pass_ratio", policy.SectionPassRatio).
		Msg("Exam policy loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Storage ───────────────────────────────────────────────────────
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer st.close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	var cachePing handler.Pinger
	if rdb != nil {
		defer rdb.Close()
		cachePing = redisPinger(rdb)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	bank := service.NewQuestionBank(st.sections, st.questions, rdb, cfg.BankCacheTTL, log)
	sampler := exam.NewSampler(bank, log)
	examService := service.NewExamService(sampler, policy)
	attemptService := service.NewAttemptService(st.attempts, bank, policy, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Section:  handler.NewSectionHandler(bank, log),
		Question: handler.NewQuestionHandler(bank, log),
		Exam:     handler.NewExamHandler(examService, log),
		Attempt:  handler.NewAttemptHandler(attemptService, log),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": st.db,
			"cache":    cachePing,
		}, log),
	}

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Fill the bank cache before accepting traffic.
	if err := bank.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	cancel()

	log.Info().Msg("Shutdown complete")
}

// openStores wires the PostgreSQL stores, or an in-memory bank seeded from
// SEED_FILE when STORAGE_DRIVER=memory.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		mem := repository.NewMemoryStore()
		if cfg.SeedFile != "" {
			doc, err := importer.ParseFile(cfg.SeedFile)
			if err != nil {
				return nil, err
			}
			summary, err := importer.New(mem.Sections(), mem.Questions(), "", log).Import(ctx, doc)
			if err != nil {
				return nil, err
			}
			log.Info().
				Str("file", cfg.SeedFile).
				Int("sections", summary.Sections).
				Int("questions", summary.Questions).
				Int("skipped", summary.Skipped).
				Msg("Memory store seeded")
		} else {
			log.Warn().Msg("SEED_FILE not set, memory store starts empty")
		}
		return &stores{
			sections:  mem.Sections(),
			questions: mem.Questions(),
			attempts:  mem.Attempts(),
			close:     func() {},
		}, nil

	case config.StorageDriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &stores{
			sections:  repository.NewSectionRepository(pool),
			questions: repository.NewQuestionRepository(pool),
			attempts:  repository.NewAttemptRepository(pool),
			db:        pool,
			close:     pool.Close,
		}, nil

	default:
		return nil, errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
	}
}

func redisPinger(rdb *redis.Client) handler.Pinger {
	return handler.PingFunc(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
