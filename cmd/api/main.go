package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/rzv09/sentiments-stocks/db"
	"github.com/rzv09/sentiments-stocks/internal/config"
	"github.com/rzv09/sentiments-stocks/internal/handler"
	"github.com/rzv09/sentiments-stocks/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// labelQueue exposes the Redis label queue depth to the stats endpoint.
type labelQueue struct{}

func (labelQueue) Depth() (int64, error) {
	return db.GetQueueLength(db.LabelQueueKey)
}

// redisCache backs the news endpoint with the shared Redis instance.
type redisCache struct{}

func (redisCache) Get(key string) ([]byte, error) {
	return db.GetCachedNewsResponse(key)
}

func (redisCache) Set(key string, payload []byte, ttl time.Duration) error {
	return db.CacheNewsResponse(key, payload, ttl)
}

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	err = db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	repo := repository.NewArticleRepository(db.DB)
	newsHandler := handler.NewNewsHandler(repo, labelQueue{}, redisCache{})

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URLs", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))
	r.Use(handler.RateLimit(10, 20))

	r.GET("/news", newsHandler.GetNews)
	r.GET("/articles", newsHandler.GetArticles)
	r.GET("/articles/unlabeled", newsHandler.GetUnlabeledArticles)
	r.POST("/articles/:url_hash/sentiment", newsHandler.PutSentiment)
	r.GET("/stats", newsHandler.GetStats)
	r.GET("/health", newsHandler.GetHealth)

	err = r.Run(":" + cfg.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
