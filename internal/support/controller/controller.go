// Package controller exposes the FAQ and rating stats over HTTP.
package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/laisky-support-bot/internal/support/model"
	"github.com/Laisky/laisky-support-bot/library/faq"
	"github.com/Laisky/laisky-support-bot/library/log"
)

// Resolver answers a free text question
type Resolver interface {
	Resolve(ctx context.Context, question string) faq.Result
}

// RatingStats summary of ratings
type RatingStats interface {
	Stats(ctx context.Context) (*model.RatingStats, error)
}

// Controller http handlers
type Controller struct {
	resolver Resolver
	ratings  RatingStats
}

// New create new controller
func New(resolver Resolver, ratings RatingStats) (*Controller, error) {
	if resolver == nil {
		return nil, errors.New("resolver is nil")
	}
	if ratings == nil {
		return nil, errors.New("rating stats is nil")
	}

	return &Controller{resolver: resolver, ratings: ratings}, nil
}

// ResolveResponse body of GET /api/faq/resolve
type ResolveResponse struct {
	Found        bool    `json:"found"`
	Answer       string  `json:"answer"`
	Question     string  `json:"question"`
	Score        float64 `json:"score"`
	SourceStatus string  `json:"source_status"`
}

func loggerFrom(c *gin.Context) logSDK.Logger {
	if logger := gmw.GetLogger(c); logger != nil {
		return logger.Named("support_api")
	}

	return log.Logger.Named("support_api")
}

// Resolve GET /api/faq/resolve?q=
//
// an empty q is answered with found=false like any other unmatched question
func (ctl *Controller) Resolve(c *gin.Context) {
	result := ctl.resolver.Resolve(c.Request.Context(), c.Query("q"))
	if result.SourceStatus.Degraded() {
		loggerFrom(c).Warn("resolve on degraded faq", zap.String("status", string(result.SourceStatus)))
	}

	c.JSON(http.StatusOK, ResolveResponse{
		Found:        result.Found,
		Answer:       result.Answer,
		Question:     result.Question,
		Score:        result.Score,
		SourceStatus: string(result.SourceStatus),
	})
}

// RatingStats GET /api/ratings/stats
func (ctl *Controller) RatingStats(c *gin.Context) {
	st, err := ctl.ratings.Stats(c.Request.Context())
	if err != nil {
		loggerFrom(c).Error("load rating stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load rating stats"})
		return
	}

	c.JSON(http.StatusOK, st)
}

// NewServer gin engine with every route
func NewServer(ctl *Controller, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	server := gin.New()
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLogger(log.Logger.Named("gin")),
		),
	)

	server.Any("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "hello, world")
	})

	api := server.Group("/api")
	api.GET("/faq/resolve", ctl.Resolve)
	api.GET("/ratings/stats", ctl.RatingStats)

	return server
}

// Run serves handler on addr until ctx is done
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Logger.Info("listening on http", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server exit")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}

	return nil
}
