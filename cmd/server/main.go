package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	// Interne
	"github.com/jupiterclapton/cenackle/services/wall-service/config"
	http_adapter "github.com/jupiterclapton/cenackle/services/wall-service/internal/adapters/primary/http"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/adapters/secondary/blobstore"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/adapters/secondary/imaging"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/adapters/secondary/security"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/ports"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/services"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/telemetry"
)

func main() {
	// 1. Config & Logger
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.Env)
	slog.Info("🚀 Starting Wall Service", "env", cfg.Env, "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Télémétrie (Tracing)
	tp, err := telemetry.InitTracer(ctx, cfg.OtelEndpoint, cfg.ServiceName, cfg.Env)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 3. Infrastructure: Redis (handle partagé)
	rdb, err := repository.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("✅ Connected to Redis")

	// 4. Infrastructure: Object storage
	var blobs ports.BlobStore = blobstore.Disabled{}
	if cfg.S3Bucket != "" {
		s3Store, err := blobstore.NewS3Store(ctx, blobstore.S3Options{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			slog.Error("Unable to init S3", "error", err)
			os.Exit(1)
		}
		blobs = s3Store
		slog.Info("✅ S3 bucket configured", "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("⚠️ No bucket configured, image posts are disabled")
	}

	// 5. Sécurité
	pem, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		slog.Error("Unable to read JWT public key", "path", cfg.JWTPublicKeyPath, "error", err)
		os.Exit(1)
	}
	verifier, err := security.NewJWTVerifier(pem, cfg.JWTIssuer)
	if err != nil {
		slog.Error("Invalid JWT public key", "error", err)
		os.Exit(1)
	}
	admin := security.NewArgon2Verifier(cfg.AdminPasswordHash)

	// 6. Initialisation du Core
	postRepo := repository.NewRedisPostRepo(rdb)
	cooldownRepo := repository.NewRedisCooldownRepo(rdb)
	likeRepo := repository.NewRedisLikeRepo(rdb)
	normalizer := imaging.NewNormalizer(imaging.Options{
		MaxDimension: cfg.ImageMaxDimension,
		Quality:      cfg.ImageQuality,
		Workers:      int64(cfg.ImageWorkers),
	})

	postService := services.NewPostService(postRepo, cooldownRepo, normalizer, blobs, admin)
	feedService := services.NewFeedService(postRepo, cooldownRepo)
	likeService := services.NewLikeService(likeRepo)

	// 7. Health Check gRPC (K8s/Docker) + reflection pour grpcurl
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		slog.Error("Failed to listen", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC server error", "error", err)
			os.Exit(1)
		}
	}()

	// 8. Chaîne de Middlewares HTTP
	mux := http.NewServeMux()
	http_adapter.NewServer(postService, feedService, likeService).Register(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	var h http.Handler = mux

	// A. Auth (Injecte le username)
	h = http_adapter.AuthMiddleware(verifier)(h)

	// B. CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", http_adapter.AdminHeader, "baggage", "traceparent"},
		AllowCredentials: true,
	})
	h = c.Handler(h)

	// C. OTEL HTTP (Racine)
	h = otelhttp.NewHandler(h, "wall-http", otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
		return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
	}))

	srvHTTP := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("📡 Wall Service listening", "port", cfg.HTTPPort)
		if err := srvHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	grpcServer.GracefulStop()

	slog.Info("👋 Server exited")
}
