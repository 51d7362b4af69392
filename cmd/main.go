package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"livedesk/backend/internal/api/handler"
	"livedesk/backend/internal/auth"
	"livedesk/backend/internal/chats"
	"livedesk/backend/internal/config"
	"livedesk/backend/internal/models"
	"livedesk/backend/internal/routing"
	"livedesk/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Chat{},
		&models.Message{},
		&models.ChatNote{},
		&models.QCRating{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting LiveDesk Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	var policy auth.VerifyPolicy = auth.BcryptPolicy{}
	if cfg.DemoLogins {
		log.Println("Warning: Demo login bypass is ENABLED")
		policy = auth.BypassPolicy{}
	}

	authSvc := auth.NewService(s, policy)
	chatSvc := chats.NewService(s)
	selector := routing.NewSelectorService(s)
	dispatcher := routing.NewDispatcherService(s)

	go dispatcher.Run()

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(handler.CORS())

	h := handler.NewHandler(authSvc, chatSvc, selector, s, []byte(cfg.JWTSecret))
	h.Register(r)

	server := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("HTTP server listening on %s", cfg.Addr())
	log.Fatal(server.ListenAndServe())
}
