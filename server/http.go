package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"lecturecast/config"
	"lecturecast/constant"
	"lecturecast/handler"
	"lecturecast/pkg/deepgram"
	"lecturecast/pkg/gemini"
	"lecturecast/pkg/objstore"
	"lecturecast/repository"
	"lecturecast/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := zerolog.Ctx(ctx)
	log.Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage setup failed")
	}

	// A missing credential leaves the collaborator nil; the operation that
	// needs it fails with a clear error instead of blocking startup.
	var stt service.Transcriber
	if cfg.Deepgram.APIKey != "" {
		dg, err := deepgram.New(cfg.Deepgram.APIKey, cfg.Deepgram.BaseURL, cfg.Deepgram.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("deepgram client setup failed")
		}
		stt = dg
	} else {
		log.Warn().Msg("DEEPGRAM_API_KEY not set, transcription disabled")
	}

	var model service.LectureModel
	if cfg.Gemini.APIKey != "" {
		gm, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini client setup failed")
		}
		model = gm
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, grouping and script generation disabled")
	}

	store := repository.NewStore()
	svc := service.New(store, objects, stt, model, cfg)
	h := handler.New(svc)

	r := gin.Default()
	r.MaxMultipartMemory = cfg.Upload.MaxSizeMB << 20
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	r.Use(requestLogger(ctx))

	addHealth(r)
	addRoutes(r, h)

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server terminated")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server shutdown")
}

func addRoutes(r *gin.Engine, h *handler.Handler) {
	api := r.Group("/api")
	api.POST("/recordings", h.Upload)
	api.GET("/recordings", h.ListRecordings)
	api.GET("/recordings/:id/transcript", h.GetTranscript)
	api.POST("/transcribe", h.Transcribe)
	api.GET("/status", h.Status)
	api.POST("/lectures/group", h.GroupLectures)
	api.GET("/lectures", h.ListLectures)
	api.GET("/lectures/export", h.ExportLectures)
	api.GET("/lectures/:id", h.GetLecture)
	api.POST("/lectures/:id/podcast", h.GenerateScript)
	api.GET("/lectures/:id/podcasts", h.ListScripts)
	api.POST("/reset", h.Reset)
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func newObjectStore(ctx context.Context, cfg *config.Config) (objstore.Store, error) {
	switch cfg.Storage.Backend {
	case "minio":
		client, err := config.NewMinioClient(cfg.Storage)
		if err != nil {
			return nil, err
		}
		return objstore.NewMinio(ctx, client, cfg.Storage.MinioBucket, "recordings")
	default:
		return objstore.NewLocal(cfg.Storage.LocalDir)
	}
}

// requestLogger propagates the process logger into every request context so
// handlers and services can use zerolog.Ctx.
func requestLogger(base context.Context) gin.HandlerFunc {
	logger := zerolog.Ctx(base)
	return func(c *gin.Context) {
		ctx := logger.WithContext(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
