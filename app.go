package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"interview-analyzer/internal/api"
	"interview-analyzer/internal/auth"
	"interview-analyzer/internal/bootstrap"
	"interview-analyzer/internal/config"
	"interview-analyzer/internal/interviewer"
	"interview-analyzer/internal/ledger"
	"interview-analyzer/internal/metrics"
	"interview-analyzer/internal/server"
	"interview-analyzer/internal/signals"
	"interview-analyzer/internal/storage"
	"interview-analyzer/internal/storage/memory"
	"interview-analyzer/internal/storage/redis"
	"interview-analyzer/internal/storage/sqlite"
	"interview-analyzer/internal/telegram"
	"interview-analyzer/internal/telemetry"
)

func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("неизвестный уровень логов %q: %w", cfg.Level, err)
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// openLedgerStore выбирает хранилище журнала по storage.ledger
func openLedgerStore(ctx context.Context, cfg config.StorageConfig) (ledger.Store, func() error, error) {
	switch cfg.Ledger {
	case "sqlite":
		store, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка открытия sqlite журнала: %w", err)
		}
		return store, store.Close, nil
	case "redis":
		store, err := redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка подключения к redis: %w", err)
		}
		return store, store.Close, nil
	default:
		return memory.NewLedgerStore(), func() error { return nil }, nil
	}
}

func serve(ctx context.Context, cfg *config.AppConfig, logger *logrus.Logger) error {
	fmt.Println("🚀 Запуск Interview Analyzer...")

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(cfg.Telemetry.ServiceName, logger)
		if err != nil {
			return fmt.Errorf("ошибка инициализации трассировки: %w", err)
		}
		defer shutdown(context.Background())
	}

	bank, err := config.Load(cfg.Bank.Path)
	if err != nil {
		return fmt.Errorf("ошибка загрузки банка интервью: %w", err)
	}

	fmt.Println("🔧 Инициализация сервисов...")

	store, closeStore, err := openLedgerStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	events, err := ledger.New(ctx, store, ledger.Options{Chained: cfg.Ledger.Chained}, logger)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Журнал событий: %s (блоков: %d)\n", cfg.Storage.Ledger, events.Len())

	directory := memory.NewDirectory()
	if _, err := bootstrap.Seed(ctx, bank, directory, events, logger, nil); err != nil {
		return err
	}

	sessions := memory.NewSessionStore()
	archive := storage.NewResultArchive(cfg.Storage.ResultsDir)
	restored, err := bootstrap.RestoreSessions(ctx, archive, sessions, logger)
	if err != nil {
		return err
	}
	if restored > 0 {
		fmt.Printf("✅ Восстановлено интервью из архива: %d\n", restored)
	}

	var emotions signals.EmotionExtractor = signals.NoFaceExtractor{}
	if cfg.Services.Emotion.URL != "" {
		emotions = api.NewEmotionClient(api.NewClient(cfg.Services.Emotion.URL, cfg.Services.Timeout))
		fmt.Println("✅ Детектор эмоций подключен")
	} else {
		fmt.Println("⚠️ Детектор эмоций не настроен, кадры оцениваются как neutral")
	}

	var classifier signals.SentimentClassifier
	if cfg.Services.Sentiment.URL != "" {
		classifier = api.NewSentimentClient(api.NewClient(cfg.Services.Sentiment.URL, cfg.Services.Timeout))
		fmt.Println("✅ Классификатор тональности подключен")
	} else {
		fmt.Println("⚠️ Классификатор тональности не настроен, используется словарь")
	}

	var sink storage.FrameSink
	if cfg.Storage.FramesDir != "" {
		sink = storage.NewDirFrameSink(cfg.Storage.FramesDir)
	}

	var notifier interviewer.Notifier
	if tg := cfg.Notify.Telegram; tg.Token != "" && tg.ChatID != 0 {
		notifier = telegram.New(tg.Token, tg.ChatID)
		fmt.Println("✅ Уведомления рекрутерам в Telegram включены")
	}

	m := metrics.NewMetrics()
	svc, err := interviewer.New(interviewer.Dependencies{
		Sessions:  sessions,
		Directory: directory,
		Ledger:    events,
		Emotions:  emotions,
		Text:      signals.NewTextAnalyzer(classifier, logger),
		Sink:      sink,
		Archive:   archive,
		Notifier:  notifier,
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	fmt.Println("✅ Интервьюер инициализирован")

	srv := server.New(server.Options{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		Interviewer:     svc,
		Ledger:          events,
		Metrics:         m,
		Resolver:        auth.NewTokenResolver(bootstrap.Identities(bank)),
		Logger:          logger,
	})

	fmt.Println("\n📋 Конфигурация:")
	fmt.Printf("• Вакансий: %d\n", bank.GetTotalJobs())
	fmt.Printf("• Категорий вопросов: %d\n", bank.GetTotalCategories())
	fmt.Printf("• Цепочка хешей: %v\n", cfg.Ledger.Chained)
	fmt.Printf("\n🌐 API доступен на :%d\n", cfg.Server.Port)

	return srv.Start(ctx)
}
