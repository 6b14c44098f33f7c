package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anonto42/nano-chat/backend/internal/auth"
	"github.com/anonto42/nano-chat/backend/internal/handlers"
	"github.com/anonto42/nano-chat/backend/internal/hub"
	"github.com/anonto42/nano-chat/backend/internal/ratelimit"
	"github.com/anonto42/nano-chat/backend/internal/repositories"
	"github.com/anonto42/nano-chat/backend/pkg/config"
	"github.com/anonto42/nano-chat/backend/pkg/firebase"
	"github.com/redis/go-redis/v9"
)

// NewDependencies wires repositories and services onto open database
// connections. The returned cleanup closes the hub and the Redis client; the
// databases stay owned by the caller.
func NewDependencies(ctx context.Context, cfg *config.Config, db *config.DB) (*Dependencies, func(), error) {
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	deps := &Dependencies{
		Users:       userRepo,
		Friendships: repositories.NewPostgresFriendshipRepository(db.Postgres),
		Posts:       repositories.NewPostgresPostRepository(db.Postgres),
		Likes:       repositories.NewPostgresLikeRepository(db.Postgres),
		Comments:    repositories.NewPostgresCommentRepository(db.Postgres),
		Messages:    repositories.NewPostgresMessageRepository(db.Postgres),
		Hub:         hub.NewHub(hub.Scope(cfg.PushScope)),
		Pingers:     map[string]handlers.Pinger{},
		BcryptCost:  cfg.BcryptCost,
		CORSOrigins: cfg.CORSOrigins,
	}
	sqlDB, err := db.Postgres.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	deps.Pingers["postgres"] = sqlDB.PingContext

	if cfg.MessageStore == config.MessageStoreMongo {
		mongoRepo := repositories.NewMongoMessageRepository(db.Mongo.Database(cfg.MongoDatabase), userRepo)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			return nil, nil, fmt.Errorf("create message indexes: %w", err)
		}
		deps.Messages = mongoRepo
		deps.Pingers["mongo"] = func(ctx context.Context) error { return db.Mongo.Ping(ctx, nil) }
	}
	slog.Info("message store selected", slog.String("store", cfg.MessageStore))

	var revoker auth.TokenRevoker = auth.NewMemoryTokenRevoker()
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = redisClient.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		revoker = auth.NewRedisTokenRevoker(redisClient)
		deps.Pingers["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }

		if cfg.AuthRateLimitPerMinute > 0 {
			limiter, err := ratelimit.NewFixedWindowLimiter(redisClient, "socialchat:ratelimit:auth", cfg.AuthRateLimitPerMinute, time.Minute)
			if err != nil {
				_ = redisClient.Close()
				return nil, nil, fmt.Errorf("init auth limiter: %w", err)
			}
			deps.AuthLimiter = limiter
		}
		slog.Info("connected to Redis")
	}
	deps.Tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry, revoker)

	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			if redisClient != nil {
				_ = redisClient.Close()
			}
			return nil, nil, err
		}
		deps.Firebase = app
	}

	cleanup := func() {
		deps.Hub.Close()
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				slog.Error("close Redis client", slog.Any("error", err))
			}
		}
	}
	return deps, cleanup, nil
}
