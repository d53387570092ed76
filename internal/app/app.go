package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/config"
	"github.com/gradix/gradix/internal/delivery/httpd"
	"github.com/gradix/gradix/internal/repository"
	"github.com/gradix/gradix/internal/service"
	"github.com/gradix/gradix/internal/service/integration"
	"github.com/gradix/gradix/internal/service/ocr"
	"github.com/gradix/gradix/internal/service/scoring"
	"github.com/gradix/gradix/internal/service/storage"
	"github.com/gradix/gradix/internal/worker"
	"github.com/gradix/gradix/internal/worker/queue"
)

type App struct {
	server        *http.Server
	logger        zerolog.Logger
	config        *config.Config
	db            *sql.DB
	gradingWorker worker.GradingWorker // nil when the async pipeline is disabled
	broker        repository.RabbitMQRepository
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	// Repositories
	studentRepo := repository.NewStudentRepository(db, log)
	examRepo := repository.NewExamRepository(db, log)
	sheetRepo := repository.NewSheetRepository(db, log)
	textRepo := repository.NewTextRepository(db, log)
	evalRepo := repository.NewEvaluationRepository(db, log)
	reportRepo := repository.NewReportRepository(db, log)

	// Object storage for scans
	store, err := storage.NewMinIOStorage(cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	// Message broker (optional)
	var broker repository.RabbitMQRepository
	if cfg.RabbitMQ.Enabled {
		broker, err = repository.NewRabbitMQRepository(cfg.RabbitMQ.URL, log)
		if err != nil {
			return nil, err
		}
		if err := broker.SetupQueue(
			cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.QueueName,
			cfg.RabbitMQ.RoutingKey,
		); err != nil {
			return nil, err
		}
	}

	// OCR chain: cloud service first, local tesseract as fallback
	ocrClient := integration.NewOCRClient(
		cfg.Services.OCR.URL,
		cfg.Services.OCR.APIKey,
		cfg.Services.OCR.Timeout,
		cfg.Services.OCR.RetryCount,
		cfg.Services.OCR.RetryDelay,
		log,
	)
	tesseract := ocr.NewTesseractBackend(
		cfg.Evaluation.TesseractCmd,
		cfg.Evaluation.TesseractLang,
		cfg.Evaluation.TesseractTimeout,
	)
	var backends []ocr.Backend
	if ocrClient.Configured() {
		backends = append(backends, ocr.NewCloudBackend(ocrClient))
	}
	backends = append(backends, tesseract)
	chain := ocr.NewChain(log, backends...)

	grammarClient := integration.NewGrammarClient(
		cfg.Services.Grammar.URL,
		cfg.Services.Grammar.APIKey,
		cfg.Services.Grammar.Timeout,
		cfg.Services.Grammar.RetryCount,
		cfg.Services.Grammar.RetryDelay,
		log,
	)

	// Scoring: remote grading service with the heuristic fallback
	remoteScorer := scoring.NewRemoteScorer(
		cfg.Services.Scorer.URL,
		cfg.Services.Scorer.APIKey,
		cfg.Services.Scorer.Timeout,
		cfg.Services.Scorer.RetryCount,
		cfg.Services.Scorer.RetryDelay,
		log,
	)
	var remote scoring.Scorer
	if remoteScorer.Configured() {
		remote = remoteScorer
	}
	reconciler := service.NewReconciler(remote, scoring.NewHeuristicScorer(), log)

	// Services
	studentService := service.NewStudentService(studentRepo, log)
	examService := service.NewExamService(examRepo, log)
	sheetService := service.NewSheetService(sheetRepo, studentRepo, examRepo, store, broker, cfg.RabbitMQ.Exchange, log)
	ocrService := service.NewOCRService(sheetRepo, textRepo, store, chain, log)
	preprocessService := service.NewPreprocessService(sheetRepo, textRepo, grammarClient, log)
	evaluationService := service.NewEvaluationService(sheetRepo, textRepo, examRepo, evalRepo, reconciler, broker, cfg.RabbitMQ.Exchange, log)
	reviewService := service.NewReviewService(sheetRepo, textRepo, evalRepo, reportRepo, log)
	reportService := service.NewReportService(studentRepo, examRepo, sheetRepo, textRepo, evalRepo, reportRepo, log)
	analyticsService := service.NewAnalyticsService(examRepo, sheetRepo, evalRepo, log)

	// Async grading pipeline
	var gradingWorker worker.GradingWorker
	if broker != nil {
		pool := worker.NewWorkerPool(cfg.Evaluation.MaxWorkers, log)
		consumer := queue.NewConsumer(
			broker,
			cfg.RabbitMQ.QueueName,
			cfg.RabbitMQ.ConsumerTag,
			cfg.RabbitMQ.PrefetchCount,
			log,
		)
		gradingWorker = worker.NewGradingWorker(pool, consumer, ocrService, preprocessService, evaluationService, log)
	}

	handler := httpd.NewHandler(
		studentService,
		examService,
		sheetService,
		ocrService,
		preprocessService,
		evaluationService,
		reviewService,
		reportService,
		analyticsService,
		cfg.Server.MaxUploadSize,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:        server,
		logger:        log,
		config:        cfg,
		db:            db,
		gradingWorker: gradingWorker,
		broker:        broker,
	}, nil
}

func (a *App) Run() error {
	if a.gradingWorker != nil {
		if err := a.gradingWorker.Start(context.Background()); err != nil {
			a.logger.Error().Err(err).Msg("Failed to start grading worker")
			return err
		}
	}

	a.logger.Info().Msgf("Starting gradix on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down gradix...")

	if a.gradingWorker != nil {
		if err := a.gradingWorker.Stop(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop grading worker")
		}
	}

	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	a.logger.Info().Msg("gradix stopped")
	return nil
}
