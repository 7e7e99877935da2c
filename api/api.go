package api

import (
	"context"
	"errors"
	"fmt"
	"frontierbacktest/internal/domain"
	"frontierbacktest/internal/logger"
	l3_service "frontierbacktest/internal/service/l3"
	"frontierbacktest/internal/util"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type ApiHandler struct {
	Config            util.Config
	OptimizerService  l3_service.OptimizerService
	ComparisonService l3_service.ComparisonService
}

func (h ApiHandler) InitializeRouterEngine() *gin.Engine {
	if !logger.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(h.requestContextMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "frontier backtest"})
	})
	router.POST("/optimize", h.optimize)
	router.POST("/backtest", h.backtest)

	return router
}

func (h ApiHandler) StartApi(port int) error {
	return h.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, errorStatus(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.FromContext(c.Request.Context()).Errorw("request failed", "status", code, "error", err.Error())
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func errorStatus(err error) int {
	fatal := domain.FatalInputError{}
	if errors.As(err, &fatal) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// requestContextMiddleware gives every request an id, a logger carrying it
// and a profile of pipeline spans.
func (h ApiHandler) requestContextMiddleware(c *gin.Context) {
	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	c.Writer.Header().Set(requestIDHeader, requestID)

	log := logger.FromContext(c.Request.Context()).With("requestID", requestID)
	ctx := logger.WithContext(c.Request.Context(), log)
	ctx, profile := domain.NewCtxWithProfile(ctx)
	c.Request = c.Request.WithContext(ctx)

	start := time.Now()
	c.Next()
	profile.End()

	log.Infow(
		"handled request",
		"method", c.Request.Method,
		"route", c.FullPath(),
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
		"spans", profile.Elapsed(),
	)
}
