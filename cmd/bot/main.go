package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/fardannozami/streak-bot/internal/app/usecase"
	"github.com/fardannozami/streak-bot/internal/config"
	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/infra/redisstore"
	"github.com/fardannozami/streak-bot/internal/infra/sqlite"
	"github.com/fardannozami/streak-bot/internal/infra/wa"
	"github.com/fardannozami/streak-bot/internal/leaderboard"
	"github.com/fardannozami/streak-bot/internal/logger"
	"github.com/fardannozami/streak-bot/internal/metrics"
	"github.com/fardannozami/streak-bot/internal/ratelimit"
	"github.com/fardannozami/streak-bot/internal/streak"
	"github.com/fardannozami/streak-bot/internal/validation"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Logger
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Path: cfg.LogPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Database & Repositories
	// WAL and busy_timeout avoid "database is locked" while whatsmeow shares the file
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.SQLitePath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := sqlite.NewStore(db).InitTables(ctx); err != nil {
		log.Fatal("init tables", zap.Error(err))
	}
	checkins := sqlite.NewCheckInRepository(db)
	profiles := sqlite.NewProfileRepository(db)
	shape := validation.New()

	// 4. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	// Unreadable stored entries are left out of rankings and counted
	onSkip := func(userID string, err error) {
		m.LeaderboardSkipped.Inc()
		log.Warn("skipped stored leaderboard entry", zap.String("user_id", userID), zap.Error(err))
	}
	var entries domain.LeaderboardRepository = sqlite.NewLeaderboardRepository(db, shape, onSkip)
	if cfg.RedisAddr != "" {
		rdb := redisstore.NewClient(redisstore.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		entries = redisstore.NewLeaderboardRepository(rdb, shape, onSkip)
		log.Info("leaderboard stored in redis", zap.String("addr", cfg.RedisAddr))
	}

	// 5. Use Cases
	clock := usecase.Clock{Location: cfg.Location}
	quotas := streak.Quotas{domain.TierFree: cfg.FreezeQuotaFree, domain.TierPremium: cfg.FreezeQuotaPaid}
	plausibility := leaderboard.NewValidator(cfg.ReleaseDate)
	ranker := leaderboard.NewRanker(plausibility, func(e *domain.LeaderboardEntry, rule leaderboard.Rule) {
		log.Debug("entry hidden from ranking", zap.String("user_id", e.UserID), zap.String("rule", string(rule)))
	})

	ensureProfile := usecase.NewEnsureProfileUsecase(profiles, clock)
	submitUC := usecase.NewSubmitEntryUsecase(entries, checkins, shape, plausibility, clock, cfg.ConsistencyWindow, m, log)
	handleMessageUC := usecase.NewHandleMessageUsecase(usecase.Commands{
		CheckIn:     usecase.NewRecordCheckInUsecase(checkins, ensureProfile, submitUC, clock, m),
		Status:      usecase.NewCheckStreakStatusUsecase(checkins, clock),
		Freeze:      usecase.NewConsumeFreezeUsecase(checkins, ensureProfile, submitUC, quotas, clock, m),
		Streak:      usecase.NewGetStreakUsecase(checkins, ensureProfile, quotas, clock, cfg.ConsistencyWindow),
		Leaderboard: usecase.NewGetLeaderboardUsecase(entries, ensureProfile, ranker, clock),
		LifePath:    usecase.NewSetLifePathUsecase(profiles, ensureProfile),
		Friend:      usecase.NewAddFriendUsecase(profiles, ensureProfile),
	}, ratelimit.New(cfg.RateLimitPerMinute), m)

	// 6. WhatsApp Service
	waService := wa.NewService(cfg.SQLitePath, logger.WhatsApp(log, "WhatsApp"))

	// 7. Register Message Handler
	waService.SetMessageHandler(func(ctx context.Context, msg wa.Message) {
		if cfg.GroupID != "" && msg.Chat.String() != cfg.GroupID {
			return
		}
		if msg.FromMe {
			return
		}

		// Resolve LIDs to phone numbers so a user keeps one id
		userID := msg.Sender.User
		if msg.IsLID() {
			userID = profiles.ResolveLIDToPhone(ctx, userID)
		}
		name := msg.PushName
		if name == "" {
			name = "Unknown"
		}

		log.Debug("message received", zap.String("user_id", userID), zap.String("name", name), zap.String("text", msg.Text))

		response, err := handleMessageUC.Execute(ctx, userID, name, msg.Text)
		if err != nil {
			log.Error("handle message", zap.String("user_id", userID), zap.Error(err))
			return
		}
		if response == "" {
			return
		}

		// Random delay between min and max to appear more human-like
		delayMs := cfg.ReplyDelayMinMs
		if cfg.ReplyDelayMaxMs > cfg.ReplyDelayMinMs {
			delayMs = cfg.ReplyDelayMinMs + rand.Intn(cfg.ReplyDelayMaxMs-cfg.ReplyDelayMinMs+1)
		}
		if err := waService.Reply(ctx, msg.Chat, response, time.Duration(delayMs)*time.Millisecond, cfg.ShowTyping); err != nil {
			log.Error("send response", zap.Error(err))
		}
	})

	// 8. Initialize Client (DB, Device, etc) - DO NOT CONNECT YET
	if err := waService.Initialize(ctx); err != nil {
		log.Fatal("initialize whatsapp service", zap.Error(err))
	}

	// 9. Connect / Login Logic
	switch {
	case waService.IsLoggedIn():
		if err := waService.Connect(); err != nil {
			log.Fatal("connect", zap.Error(err))
		}
		log.Info("client is already logged in")
	case cfg.BotPhone != "":
		// Pairing needs a live connection
		if err := waService.Connect(); err != nil {
			log.Fatal("connect for pairing", zap.Error(err))
		}
		code, err := waService.Pair(ctx, cfg.BotPhone)
		if err != nil {
			log.Error("generate pair code", zap.String("phone", cfg.BotPhone), zap.Error(err))
			break
		}
		log.Info("enter this code under Linked Devices > Link with phone number", zap.String("pair_code", code))
	default:
		log.Info("not logged in and BOT_PHONE not set, printing QR")
		if err := waService.PrintQR(ctx); err != nil {
			log.Fatal("qr login", zap.Error(err))
		}
	}

	log.Info("bot is running, press Ctrl+C to exit")
	<-ctx.Done()

	log.Info("shutting down")
	waService.Disconnect()
}
