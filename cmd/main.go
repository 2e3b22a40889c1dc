package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"chatwave/backend/internal/api/handler"
	"chatwave/backend/internal/chathub"
	"chatwave/backend/internal/config"
	"chatwave/backend/internal/models"
	"chatwave/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
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
		&models.Message{},
		&models.Call{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting ChatWave Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	store := storage.NewService(db, rdb)

	hub := chathub.NewHub(store, cfg.TypingTimeout)
	h := handler.NewHandler(hub, store, cfg.JWTSecret)

	r := gin.Default()

	r.POST("/api/auth/token", h.IssueToken)
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api", h.AuthRequired())
	api.GET("/chat/messages", h.GetMessages)
	api.GET("/chat/rooms", h.GetChatRooms)
	api.GET("/calls/history", h.GetCallHistory)
	api.DELETE("/calls/history", h.ClearCallHistory)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
