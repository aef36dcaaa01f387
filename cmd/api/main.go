package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ondot-chat/config"
	"ondot-chat/internal/handler"
	"ondot-chat/internal/middleware"
	"ondot-chat/internal/redis"
	"ondot-chat/internal/repository"
	"ondot-chat/internal/server"
	"ondot-chat/internal/services"
	"ondot-chat/internal/websocket"
	"ondot-chat/pkg/database"
	"ondot-chat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, l)
	stop()
	if err != nil {
		l.Errorf("server exited: %v", err)
		l.Sync()
		os.Exit(1)
	}
	l.Sync()
}

func run(ctx context.Context, cfg *config.Config, l *logger.Logger) error {
	db, err := database.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		return err
	}
	repos := repository.New(db)

	var (
		sessionCache services.SessionCache
		limiter      services.MessageLimiter
		contactLimit middleware.LimitFunc
		subscriber   *redis.Subscriber
		directory    *redis.RoomDirectory
	)
	hubCfg := websocket.HubConfig{InstanceID: uuid.NewString(), Logger: l.Named("websocket")}

	if cfg.RedisEnabled {
		client := redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		if err := redis.Ping(ctx, client); err != nil {
			return err
		}

		rateLimiter := redis.NewRateLimiter(client, redis.RateLimitConfig{
			MessageLimit:  cfg.MessageRateLimit,
			MessageWindow: time.Minute,
			ContactLimit:  cfg.ContactRateLimit,
			ContactWindow: time.Hour,
		})

		directory = redis.NewRoomDirectory(client, hubCfg.InstanceID, l.Named("rooms"))
		if err := directory.Heartbeat(ctx, redis.HeartbeatTTL(cfg.RoomHeartbeatInterval)); err != nil {
			return err
		}
		if n, err := directory.Reap(ctx); err != nil {
			l.Warnf("Room directory reap failed: %v", err)
		} else if n > 0 {
			l.Infof("Reaped %d stale room members", n)
		}

		hubCfg.Directory = directory
		hubCfg.Publisher = redis.NewPublisher(client)
		sessionCache = redis.NewSessionCache(client, cfg.SessionCacheTTL)
		limiter = rateLimiter
		contactLimit = rateLimiter.AllowContactRequest
		subscriber = redis.NewSubscriber(client, l.Named("redis"))
	} else {
		l.Warnf("Redis disabled, running as a single instance")
	}

	hub := websocket.NewHub(hubCfg)

	var push services.PushProvider
	if cfg.PushEndpoint != "" {
		push = services.NewExpoPushProvider(cfg.PushEndpoint, cfg.PushTimeout)
	}

	auth := services.NewAuthService(repos.Users, sessionCache, cfg, l.Named("auth"))
	presence := services.NewPresenceService(hub)
	notifier := services.NewNotificationService(services.NotificationServiceConfig{
		Repo:        repos.Notifications,
		Presence:    presence,
		Rooms:       hub,
		Push:        push,
		Tokens:      repos.Devices,
		PushTimeout: cfg.PushTimeout,
		Logger:      l.Base(),
	})
	contacts := services.NewContactService(repos.Contacts, presence, notifier, l.Base())
	chat := services.NewChatService(db, hub, limiter, l.Base())
	calls := services.NewCallService(hub, chat, l.Base())

	gateway := websocket.NewGateway(auth, hub)
	srv := server.New(cfg, db, l)
	srv.OnShutdown(gateway.Shutdown)
	srv.SetupRoutes(&server.Handlers{
		Contacts:      handler.NewContactHandler(contacts),
		Notifications: handler.NewNotificationHandler(notifier),
		Presence:      handler.NewPresenceHandler(presence),
		Sessions:      handler.NewSessionHandler(auth),
		WebSocket:     websocket.NewHandler(gateway, hub, chat, calls, websocket.NewWebSocketLogger(l.Base())),
	}, auth, contactLimit)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if subscriber != nil {
		g.Go(func() error {
			return websocket.NewRedisBridge(subscriber, hub).Run(gctx, nil)
		})
	}
	if directory != nil {
		g.Go(func() error {
			return directory.Run(gctx, cfg.RoomHeartbeatInterval)
		})
	}

	l.Base().Info("gateway started", zap.String("instance_id", hub.InstanceID()), zap.Bool("redis", cfg.RedisEnabled))
	err = g.Wait()

	// let in-flight push deliveries finish before the process exits
	notifier.Wait()
	return err
}
