// Package httpapi expone los rankings por HTTP (sólo lectura).
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/activity-leaderboard-bot/internal/app/service"
	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
)

// Leaderboards lo implementa service.Ranker.
type Leaderboards interface {
	Top(ctx context.Context, guildID string, m domain.Metric) ([]service.Entry, error)
	Balanced(ctx context.Context, guildID string) ([]service.Entry, error)
	Streaks(ctx context.Context, guildID string) ([]service.Entry, error)
	Profile(ctx context.Context, guildID, userID string) (service.Profile, error)
}

type Server struct {
	boards Leaderboards
	router *gin.Engine
	srv    *http.Server
}

func New(boards Leaderboards) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Err(err).Msg("set trusted proxies")
	}
	router.Use(gin.Recovery(), gin.LoggerWithWriter(log.Logger, "/healthz"))

	s := &Server{boards: boards, router: router}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := s.router.Group("/v1/guilds/:guild")
	v1.GET("/leaderboard", s.handleLeaderboard)
	v1.GET("/streaks", s.handleStreaks)
	v1.GET("/users/:user", s.handleUser)

	s.router.NoRoute(func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"error": "not found"}) })
}

func (s *Server) Handler() http.Handler { return s.router }

type entryJSON struct {
	Rank          int     `json:"rank"`
	UserID        string  `json:"user_id"`
	DisplayName   string  `json:"display_name"`
	Value         int64   `json:"value,omitempty"`
	Score         float64 `json:"score,omitempty"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`

	WeeklyMessages int64 `json:"weekly_messages,omitempty"`
	WeeklyVoice    int64 `json:"weekly_voice_minutes,omitempty"`
}

func toJSON(entries []service.Entry) []entryJSON {
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryJSON(e))
	}
	return out
}

type counterJSON struct {
	Daily         int64  `json:"daily"`
	Weekly        int64  `json:"weekly"`
	Monthly       int64  `json:"monthly"`
	AllTime       int64  `json:"alltime"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	LastActivity  string `json:"last_activity,omitempty"`
}

func counter(c domain.ActivityCounter) counterJSON {
	return counterJSON{
		Daily:         c.Daily,
		Weekly:        c.Weekly,
		Monthly:       c.Monthly,
		AllTime:       c.AllTime,
		CurrentStreak: c.CurrentStreak,
		LongestStreak: c.LongestStreak,
		LastActivity:  c.LastActivity.String(),
	}
}

func (s *Server) internalError(c *gin.Context, err error, what string) {
	log.Error().Err(err).Str("guild", c.Param("guild")).Msg(what)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// GET /v1/guilds/:guild/leaderboard?metric=weekly_messages
func (s *Server) handleLeaderboard(c *gin.Context) {
	guild := c.Param("guild")
	raw := strings.ToLower(strings.TrimSpace(c.DefaultQuery("metric", "weekly_messages")))

	var (
		entries []service.Entry
		err     error
	)
	if raw == domain.MetricBalanced {
		entries, err = s.boards.Balanced(c.Request.Context(), guild)
	} else {
		var m domain.Metric
		if m, err = domain.ParseMetric(raw); err == nil {
			raw = m.String()
			entries, err = s.boards.Top(c.Request.Context(), guild, m)
		}
	}
	if errors.Is(err, domain.ErrUnknownMetric) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown metric", "metric": raw})
		return
	}
	if err != nil {
		s.internalError(c, err, "leaderboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"guild": guild, "metric": raw, "entries": toJSON(entries)})
}

func (s *Server) handleStreaks(c *gin.Context) {
	entries, err := s.boards.Streaks(c.Request.Context(), c.Param("guild"))
	if err != nil {
		s.internalError(c, err, "streaks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"guild": c.Param("guild"), "entries": toJSON(entries)})
}

func (s *Server) handleUser(c *gin.Context) {
	p, err := s.boards.Profile(c.Request.Context(), c.Param("guild"), c.Param("user"))
	if err != nil {
		s.internalError(c, err, "profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":      p.UserID,
		"display_name": p.DisplayName,
		"messages":     counter(p.Message),
		"voice":        counter(p.Voice),
	})
}

// Start escucha en segundo plano; los errores de ListenAndServe sólo se loguean.
func (s *Server) Start(addr string) {
	s.srv = &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Msg("http server")
		}
	}()
	log.Info().Str("addr", addr).Msg("HTTP API escuchando")
}

func (s *Server) Stop() {
	if s.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Debug().Err(err).Msg("http shutdown")
	}
}
