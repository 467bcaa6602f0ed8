package bootstrap

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"order-card-bot/internal/config"
	"order-card-bot/internal/controller"
	"order-card-bot/internal/conversation"
	"order-card-bot/internal/pkg/logger"
	"order-card-bot/internal/pkg/mailer"
	"order-card-bot/internal/pkg/oplock"
	"order-card-bot/internal/pkg/secret"
	"order-card-bot/internal/pkg/serverutils"
	"order-card-bot/internal/repository/contract"
	"order-card-bot/internal/repository/filesystem"
	"order-card-bot/internal/repository/memory"
	"order-card-bot/internal/repository/relational"
	"order-card-bot/internal/repository/unitofwork"
	"order-card-bot/internal/service"
	"order-card-bot/internal/transport/download"
	"order-card-bot/internal/transport/telegram"
	internalWS "order-card-bot/internal/websocket"
	"order-card-bot/pkg/board"
	"order-card-bot/pkg/database"
	"order-card-bot/pkg/document"
	pktNats "order-card-bot/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	EventController     controller.IEventController
	DraftController     controller.IDraftController
	HealthController    controller.IHealthController
	WebsocketController controller.IWebsocketController
	Auth                fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService service.INotificationService
	TelegramBot         *telegram.Bot
	WebSocketHub        *internalWS.Hub

	Conversation *conversation.Service
	Logger       logger.ILogger

	closers []func()
}

func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	c.Logger = sysLogger
	c.onClose(func() { _ = auditLogger.Sync() })

	sealer := secret.NewSealer(cfg.Security.CredentialsSecret)
	if !sealer.Enabled() {
		log.Println("[WARN] CREDENTIALS_SECRET is empty, Trello tokens are stored in plain text")
	}

	// 2. Storage
	drafts, credentials, err := c.newStores(cfg, sealer)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	c.onClose(func() { _ = pubSub.Close() })

	// 4. Infrastructure
	rdb := c.newRedis(cfg)
	var locker oplock.Locker = oplock.NewLocalLocker()
	if rdb != nil {
		locker = oplock.NewRedisLocker(rdb, cfg.Redis.LockTTL)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	c.WebSocketHub = internalWS.NewHub(rdb, uuid.NewString(), wsLogger)
	var eventPublisher service.EventPublisher
	if cfg.NATS.Enabled {
		conn, err := pktNats.Connect(cfg.NATS.URL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS: %v", err)
		} else {
			c.onClose(conn.Close)
			eventPublisher = pktNats.NewPublisher(conn)
			subscriber := pktNats.NewSubscriber(conn)
			c.onClose(subscriber.Stop)
			c.NotificationService = service.NewNotificationService(
				subscriber, newMailer(cfg), cfg.Keys.ReportEmail, auditLogger,
			)
		}
	}

	// 5. Services
	boards := board.NewTrelloFactory(board.Options{
		BaseURL:           cfg.Trello.BaseURL,
		Timeout:           cfg.Trello.Timeout,
		UploadTimeout:     cfg.Trello.UploadTimeout,
		RequestsPerSecond: cfg.Trello.RequestsPerSecond,
	})

	publisherService := service.NewPublisherService(cfg.Keys.ReportTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Keys.ReportTopic,
		auditLogger,
		eventPublisher,
		newMailer(cfg),
		cfg.Keys.ReportEmail,
	)
	commitService := service.NewCommitService(drafts, credentials, boards, publisherService, sysLogger, cfg.Trello.TargetList)

	// 6. Transports
	var botAPI *tgbotapi.BotAPI
	var resolve download.Resolver
	if cfg.Telegram.Token != "" {
		botAPI, err = telegram.NewBotAPI(cfg.Telegram.Token, cfg.Telegram.Debug)
		if err != nil {
			c.Close()
			return nil, err
		}
		resolve = telegram.FileURL(botAPI)
	}

	c.Conversation = conversation.NewService(conversation.Dependencies{
		Sessions:    conversation.NewRegistry(memory.NewSessionRepository[conversation.Session](cfg.App.SessionTTL)),
		Drafts:      drafts,
		Credentials: credentials,
		Boards:      boards,
		Documents:   document.NewPDFSource(),
		Downloader:  download.New(cfg.Trello.UploadTimeout, resolve, download.DefaultMaxSize),
		Committer:   commitService,
		Locker:      locker,
		Logger:      sysLogger,
		FilesDir:    cfg.Storage.FilesDir,
	})

	mirrored := c.WebSocketHub.Mirror(c.Conversation)

	transports := []string{}
	if botAPI != nil {
		c.TelegramBot = telegram.NewBot(botAPI, mirrored, sysLogger, cfg.Telegram.PollTimeout)
		transports = append(transports, "telegram")
	}
	if cfg.App.HTTPEnabled {
		transports = append(transports, "http")
	}

	// 7. Controllers
	c.Auth = serverutils.NewJwtMiddleware(cfg.Security.JWTSecret)
	c.EventController = controller.NewEventController(mirrored)
	c.WebsocketController = controller.NewWebsocketController(c.WebSocketHub)
	c.DraftController = controller.NewDraftController(drafts)
	c.HealthController = controller.NewHealthController(cfg.Storage.Backend, transports...)

	return c, nil
}

func (c *Container) newStores(cfg *config.Config, sealer *secret.Sealer) (contract.DraftStore, contract.CredentialStore, error) {
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to GORM DB: %w", err)
		}
		c.onClose(func() { _ = database.Close(db) })
		uowFactory := unitofwork.NewRepositoryFactory(db)
		return relational.NewDraftStore(uowFactory), relational.NewCredentialStore(uowFactory, sealer), nil
	case config.StorageFilesystem, "":
		dir := filepath.Clean(cfg.Storage.DataDir)
		return filesystem.NewDraftStore(dir), filesystem.NewCredentialStore(dir, sealer), nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}
}

// newRedis returns nil unless Redis is enabled. With Redis, operator locks and the
// websocket feed span every bot instance.
func (c *Container) newRedis(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.Redis.URL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	c.onClose(func() { _ = rdb.Close() })
	return rdb
}

func newMailer(cfg *config.Config) mailer.IEmailService {
	if cfg.SMTP.Host == "" {
		return nil
	}
	return mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)
}

func (c *Container) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
