package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/eliswilliam/CINEHOME/internal/api"
	"github.com/eliswilliam/CINEHOME/internal/auth"
	"github.com/eliswilliam/CINEHOME/internal/chat"
	"github.com/eliswilliam/CINEHOME/internal/config"
	"github.com/eliswilliam/CINEHOME/internal/redis"
	"github.com/eliswilliam/CINEHOME/internal/service/account"
	"github.com/eliswilliam/CINEHOME/internal/service/social"
	"github.com/eliswilliam/CINEHOME/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CINEHOME_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbType := os.Getenv("CINEHOME_DB")
	if dbType == "" {
		dbType = "sqlite3"
	}
	log.Printf("dbType: %s\n", dbType)
	db, err := storage.Open(dbType, cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	rdb, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("create redis client: %v", err)
	}
	defer rdb.Close()

	// Create necessary tables: users, tokens, posts, comments
	if err := storage.Migrate(db, dbType); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := chat.NewStore(
		cfg.Chat.MaxHistoryMessages,
		time.Duration(cfg.Chat.SessionTimeoutMinutes)*time.Minute,
	)
	store.StartSweeper(ctx, time.Duration(cfg.Chat.SweepIntervalMinutes)*time.Minute)

	chatModel, err := chat.NewChatModel(ctx, cfg)
	if err != nil {
		log.Fatalf("init chat model: %v", err)
	}
	tmdb := chat.NewTMDBClient(cfg.TMDB)
	orchestrator := chat.NewOrchestrator(store, tmdb, chatModel, chat.OrchestratorConfig{
		ResolveTimeout: time.Duration(cfg.Chat.ResolveTimeoutSeconds) * time.Second,
	})

	mailer := account.NewSMTPMailer(cfg.SMTP)
	accountService := account.NewService(db, rdb, mailer, cfg.BasicConfig.DevMode)
	socialService := social.NewService(db)
	authService := auth.NewService(db, 24*time.Hour)

	handlers := api.NewHandler(accountService, socialService, authService, orchestrator)

	router := gin.Default()
	handlers.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	if addr == "" {
		addr = ":8090"
	}

	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
