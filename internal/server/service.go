package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/huynhduongtien171003/amis-demo/internal/common"
	"github.com/huynhduongtien171003/amis-demo/internal/export"
	"github.com/huynhduongtien171003/amis-demo/internal/llm"
	"github.com/huynhduongtien171003/amis-demo/internal/pipeline"
	"github.com/huynhduongtien171003/amis-demo/internal/repository"
)

// Service wires the extraction pipeline, job store and exporter behind the
// HTTP API.
type Service struct {
	cfg       *common.Config
	logger    *slog.Logger
	store     repository.JobStore
	extractor llm.Extractor
	engine    *pipeline.Engine
	exporter  *export.Service
}

func NewService(cfg *common.Config, store repository.JobStore, extractor llm.Extractor, engine *pipeline.Engine, exporter *export.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		extractor: extractor,
		engine:    engine,
		exporter:  exporter,
	}
}

// Router builds the gin engine with CORS and all API routes.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = s.cfg.Server.CORSOrigins
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.handleHealth)

	ocr := r.Group("/api/ocr")
	{
		ocr.POST("/upload", s.handleInvoiceUpload)
		ocr.POST("/text", s.handleInvoiceText)
		ocr.GET("/result/:job_id", s.handleResult)
		ocr.PUT("/update/:job_id", s.handleInvoiceUpdate)
		ocr.GET("/jobs", s.handleInvoiceJobs)
		ocr.DELETE("/job/:job_id", s.handleDelete)
	}

	order := r.Group("/api/order")
	{
		order.POST("/upload", s.handleOrderUpload)
		order.POST("/text", s.handleOrderText)
		order.GET("/result/:job_id", s.handleResult)
		order.PUT("/update/:job_id", s.handleOrderUpdate)
		order.GET("/jobs", s.handleOrderJobs)
		order.DELETE("/job/:job_id", s.handleDelete)
	}

	exp := r.Group("/api/export")
	{
		exp.POST("/amis/:job_id", s.handleExportAMIS)
		exp.GET("/download/:filename", s.handleDownload)
	}

	return r
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Service) Run() error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listen", "addr", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.logger.Info("server.shutdown.start", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server.shutdown.done")
	return nil
}

func (s *Service) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Service) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "amis-demo",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
