package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"topicrelay/pkg/logger"
	"topicrelay/service"
)

// Server is the read-only ops API next to the bot.
type Server struct {
	svc  service.IServiceManager
	log  logger.ILogger
	http *http.Server
}

func New(svc service.IServiceManager, port int, log logger.ILogger) *Server {
	s := &Server{svc: svc, log: log}
	s.http = &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/users/:user_id/topic", s.userTopic)
		api.GET("/topics/:topic_id/user", s.topicUser)
		api.GET("/stats", s.stats)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("ops API listening", logger.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) userTopic(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	threadID, found, err := s.svc.Topic().ThreadForUser(c.Request.Context(), userID)
	if err != nil {
		s.log.Error("topic lookup failed", logger.Int64("user_id", userID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no topic for user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "topic_id": threadID})
}

func (s *Server) topicUser(c *gin.Context) {
	topicID, err := strconv.Atoi(c.Param("topic_id"))
	if err != nil || topicID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic_id"})
		return
	}

	userID, found, err := s.svc.Topic().UserForThread(c.Request.Context(), topicID)
	if err != nil {
		s.log.Error("user lookup failed", logger.Int("topic_id", topicID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no user for topic"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "topic_id": topicID})
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.svc.Topic().Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
