package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"trivia-party-service/internal/adapters/signal"
	"trivia-party-service/internal/app/orch"
	"trivia-party-service/internal/config"
	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/trivia"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, questions *trivia.Client) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("TriviaPartySessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewGameWSController(o, cfg)

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "Healthy")
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, o.Rooms.List())
	})

	// Same-origin proxy for the trivia provider so browser clients skip
	// a third-party CORS hop. A provider failure never starts a round.
	api.GET("/questions", func(c *gin.Context) {
		amount, err := strconv.Atoi(c.DefaultQuery("amount", "50"))
		if err != nil || amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad amount"})
			return
		}
		difficulty := c.DefaultQuery("difficulty", "easy")

		qs, err := questions.Fetch(c.Request.Context(), amount, difficulty)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("trivia fetch failed")
			status := http.StatusBadGateway
			if errors.Is(err, domain.ErrEmptyQuestionSet) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": "could not fetch questions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"response_code": 0, "results": qs})
	})

	api.GET("/ws/game", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws game endpoint hit")
		ctrl.HandleGame(ctx, c)
	})

	return r
}
