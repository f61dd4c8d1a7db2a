package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/stemsi/theoryexam-backend/internal/config"
	"github.com/stemsi/theoryexam-backend/internal/database"
	"github.com/stemsi/theoryexam-backend/internal/importer"
	"github.com/stemsi/theoryexam-backend/internal/logger"
	"github.com/stemsi/theoryexam-backend/internal/model"
	"github.com/stemsi/theoryexam-backend/internal/repository"
	"github.com/stemsi/theoryexam-backend/internal/service"
)

func main() {
	var (
		file string
		lang string
	)
	flag.StringVar(&file, "file", "", "Path to the question bank JSON document")
	flag.StringVar(&lang, "lang", model.LangArabic, "Language the document's texts are written in (ar, en, sv)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Component(logger.Setup(cfg.LogLevel, cfg.LogFormat), "import")

	if file == "" {
		flag.PrintDefaults()
		os.Exit(2)
	}

	doc, err := importer.ParseFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read question bank")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	sections := repository.NewSectionRepository(pool)
	questions := repository.NewQuestionRepository(pool)

	summary, err := importer.New(sections, questions, lang, log).Import(ctx, doc)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	log.Info().
		Int("sections", summary.Sections).
		Int("questions", summary.Questions).
		Int("skipped", summary.Skipped).
		Msg("Import finished")

	// Running servers would otherwise keep serving the previous bank until TTL expiry.
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, bank cache not invalidated")
		return
	}
	if rdb == nil {
		return
	}
	defer rdb.Close()

	bank := service.NewQuestionBank(sections, questions, rdb, cfg.BankCacheTTL, log)
	if err := bank.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Bank cache invalidation failed")
		return
	}
	log.Info().Msg("Bank cache invalidated")
}
