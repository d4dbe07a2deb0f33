package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Basic-PDF-Manager/Document-Service/cmd/middleware"
	"github.com/Basic-PDF-Manager/Document-Service/internal/api"
	"github.com/Basic-PDF-Manager/Document-Service/internal/api/handlers"
	"github.com/Basic-PDF-Manager/Document-Service/internal/blob"
	"github.com/Basic-PDF-Manager/Document-Service/internal/catalog"
	"github.com/Basic-PDF-Manager/Document-Service/internal/configuration"
	"github.com/Basic-PDF-Manager/Document-Service/internal/registry"
	"github.com/Basic-PDF-Manager/Document-Service/internal/services"
	"github.com/Basic-PDF-Manager/Document-Service/internal/session"
	"github.com/Basic-PDF-Manager/Document-Service/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := configuration.Load()

	// Metadata store: snapshot file or relational mirror
	var store storage.Store
	switch cfg.MetadataBackend {
	case "postgres":
		pg, err := storage.NewPostgresStore(cfg.Database.ConnectionString())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL storage: %v", err)
		}
		store = pg
		log.Println("Using PostgreSQL metadata storage")
	default:
		store = storage.NewSnapshotStore(cfg.SnapshotPath)
		log.Printf("Using snapshot metadata storage (%s)", cfg.SnapshotPath)
	}

	// Load persisted documents; an unreadable store is not fatal
	docs, err := store.LoadAll(context.Background())
	if err != nil {
		log.Printf("Warning: failed to load persisted documents: %v", err)
		log.Println("Starting with an empty registry...")
		docs = nil
	} else {
		log.Printf("Loaded %d documents from storage", len(docs))
	}

	reconciler := storage.NewReconciler(store)
	reg := registry.New(docs, reconciler)
	cat := catalog.NewDefault()

	// Blob store: local disk or MinIO
	var blobs blob.FileStore
	var localDir string
	switch cfg.BlobBackend {
	case "minio":
		m, err := blob.NewMinioStore(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.BucketName, cfg.MinIO.UseSSL)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO storage: %v", err)
		}
		blobs = m
		log.Println("Connected to MinIO successfully")
	default:
		l, err := blob.NewLocalStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to initialize upload directory: %v", err)
		}
		blobs = l
		localDir = l.Dir()
	}

	sessions := session.NewStore(session.User{
		ID:       1,
		Username: cfg.Auth.Username,
		Name:     cfg.Auth.Name,
	}, cfg.Auth.Password, cfg.Auth.SessionTTL)

	var events *services.Publisher
	if cfg.NATSURL != "" {
		events, err = services.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Printf("Warning: NATS unavailable, events disabled: %v", err)
			events = nil
		}
	}

	if cfg.OIDCIssuer != "" {
		if err := middleware.InitAuth(cfg.OIDCIssuer); err != nil {
			log.Printf("Warning: OIDC init failed, bearer auth disabled: %v", err)
		}
	}

	setupGracefulShutdown(reconciler, reg, events)

	r := gin.Default()
	if localDir != "" {
		r.Static("/uploads", localDir)
	}
	api.RegisterRoutes(r, handlers.New(reg, cat, blobs, sessions, events, reconciler, cfg.CLAMAVURL), sessions)

	log.Println("Server starting on :" + cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupGracefulShutdown(reconciler *storage.Reconciler, reg *registry.Registry, events *services.Publisher) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := reconciler.Shutdown(ctx, reg.Snapshot()); err != nil {
			log.Printf("Warning: storage shutdown failed: %v", err)
		}
		events.Close()
		os.Exit(0)
	}()
}
