// Package server assembles the HTTP surface: the messaging webhook,
// the operator API, the dev web chat and the ops endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	_ "github.com/xpanvictor/newscap/docs"
	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/internal/domains/conversation"
	"github.com/xpanvictor/newscap/internal/domains/operator"
	"github.com/xpanvictor/newscap/internal/domains/toolcatalog"
	"github.com/xpanvictor/newscap/internal/handlers"
	"github.com/xpanvictor/newscap/internal/handlers/chatws"
	"github.com/xpanvictor/newscap/internal/metrics"
	convoRepo "github.com/xpanvictor/newscap/internal/repository/conversation"
	"github.com/xpanvictor/newscap/internal/tracelog"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/botframe"
	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

// Webhook rate limit per client IP. Channel services retry politely,
// the burst absorbs proactive message fan-out.
const (
	webhookRate  rate.Limit = 5
	webhookBurst            = 10
)

// shutdownGrace bounds the drain of in-flight requests.
const shutdownGrace = 10 * time.Second

// Dependencies carries everything the HTTP surface needs. Validator,
// Catalog and Collector may be nil.
type Dependencies struct {
	Settings     *config.Settings
	Logger       *Logger.Logger
	Host         conversation.HostService
	Validator    *botframe.TokenValidator
	Operators    operator.OperatorService
	Registrar    toolcatalog.RegistrarService
	Registry     toolbridge.Registry
	Store        convoRepo.Store
	Traces       tracelog.Ring
	Catalog      handlers.CatalogProbe
	Collector    *metrics.Collector
	ChatSessions *chatws.Manager
}

// NewRouter builds the gin engine with the full route table.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Settings.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestLoggerMiddleware(deps.Logger))
	r.Use(handlers.CORSMiddleware())
	r.Use(handlers.ErrorHandlerMiddleware(deps.Logger))

	// ops surface
	health := handlers.NewHealthHandler(deps.Registrar, deps.Catalog)
	health.RegisterHealthRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var turnMetrics handlers.TurnMetrics
	if deps.Collector != nil {
		turnMetrics = deps.Collector
	}

	// messaging webhook, rate limited per client IP
	messages := handlers.NewMessagesHandler(deps.Settings.Bot, deps.Host, deps.Validator, deps.Traces, turnMetrics, deps.Logger)
	messages.RegisterMessageRoutes(r, handlers.RateLimitMiddleware(webhookRate, webhookBurst))

	// dev web chat over websocket
	if deps.ChatSessions != nil {
		chat := chatws.NewHandler(deps.Host, deps.ChatSessions, deps.Logger)
		chat.RegisterRoutes(r)
	}

	// operator API
	v1 := r.Group("/api/v1")
	operators := handlers.NewOperatorHandler(deps.Operators, deps.Logger)
	operators.RegisterOperatorRoutes(v1)

	admin := handlers.NewAdminHandler(deps.Registrar, deps.Registry, deps.Store, deps.Traces, deps.Logger)
	admin.RegisterAdminRoutes(v1, handlers.AuthMiddleware(deps.Operators, deps.Logger))

	return r
}

// Run serves the engine until ctx is cancelled, then drains in-flight
// requests before returning.
func Run(ctx context.Context, port int, engine *gin.Engine, lg *Logger.Logger) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		lg.Info("draining http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
