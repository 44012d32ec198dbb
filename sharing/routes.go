package sharing

import (
	"crypto/subtle"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voicetypr/remote/errors"
	"github.com/voicetypr/remote/logger"
	"github.com/voicetypr/remote/version"
)

// respondError flattens err onto the wire shape. AppErrors carry their own
// status and public message; anything else is a 500 with the message verbatim.
func respondError(c *gin.Context, err error) {
	c.JSON(errors.WireStatus(err), ErrorResponse{Error: errors.WireMessage(err)})
}

// NewRouter builds the gin engine with the two API routes, shared across
// all bound listeners.
func NewRouter(ctx ServerContext, inflight *atomic.Int64, log *logger.Logger) *gin.Engine {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(recovery(log))
	engine.Use(requestID())
	engine.Use(trackConnections(inflight))
	engine.Use(keyAuth(ctx, log))

	v1 := engine.Group("/api/v1")
	v1.GET("/status", handleStatus(ctx, log))
	v1.POST("/transcribe", handleTranscribe(ctx, log))

	return engine
}

// recovery recovers from handler panics and logs the stack.
func recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered", map[string]interface{}{
					"error":  fmt.Sprintf("%v", err),
					"stack":  string(debug.Stack()),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})
				appErr := errors.Internal(fmt.Errorf("%v", err))
				c.AbortWithStatusJSON(appErr.HTTPStatus, ErrorResponse{Error: appErr.Message})
			}
		}()
		c.Next()
	}
}

// requestID injects a unique X-Request-Id header into every request/response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(logger.FieldRequestID, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// trackConnections counts requests currently in flight across all listeners.
func trackConnections(inflight *atomic.Int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		inflight.Add(1)
		defer inflight.Add(-1)
		c.Next()
	}
}

// keyAuth enforces the shared secret. When no password is configured,
// every request passes regardless of the header.
func keyAuth(ctx ServerContext, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		password := ctx.GetPassword()
		if password == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(AuthHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(password)) != 1 {
			log.Warn("request rejected, authentication failed", logger.Fields(
				logger.FieldServer, ctx.GetServerName(),
				"path", c.Request.URL.Path,
			))
			appErr := errors.Unauthorized()
			c.AbortWithStatusJSON(appErr.HTTPStatus, ErrorResponse{Error: appErr.Message})
			return
		}
		c.Next()
	}
}

// handleStatus serves GET /api/v1/status.
func handleStatus(ctx ServerContext, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := StatusResponse{
			Status:  "ok",
			Version: version.String(),
			Model:   ctx.GetModelName(),
			Name:    ctx.GetServerName(),
		}

		log.Debug("status request served", logger.Fields(
			logger.FieldModel, resp.Model,
			logger.FieldServer, resp.Name,
		))

		c.JSON(http.StatusOK, resp)
	}
}

// handleTranscribe serves POST /api/v1/transcribe. The body is raw audio
// bytes; the Content-Type must start with "audio/".
func handleTranscribe(ctx ServerContext, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType := c.GetHeader("Content-Type")
		if !strings.HasPrefix(contentType, "audio/") {
			log.Warn("transcription rejected, unsupported content type", logger.Fields(
				"content_type", contentType,
			))
			respondError(c, errors.UnsupportedMediaType(contentType))
			return
		}

		audio, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondError(c, errors.Internal(err))
			return
		}

		log.Info("transcription request received", logger.Fields(
			logger.FieldServer, ctx.GetServerName(),
			"audio_kb", float64(len(audio))/1024.0,
		))

		resp, err := ctx.Transcribe(c.Request.Context(), audio)
		if err != nil {
			log.Warn("transcription failed", logger.ErrorFields("transcribe", err))
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}
