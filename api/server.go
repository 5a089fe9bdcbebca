package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	catalogx "github.com/tanpawarit/food-recommendation-agent/agent/catalog"
	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
	toolx "github.com/tanpawarit/food-recommendation-agent/agent/tool"
)

const requestIDHeader = "X-Request-ID"

type Config struct {
	Addr           string        `split_words:"true" default:":8080"`
	RequestTimeout time.Duration `split_words:"true" default:"60s"`
}

// UserProfiles fills in request context the caller did not send.
type UserProfiles interface {
	UserContext(ctx context.Context, userID string) (catalogx.UserContext, error)
}

type ToolLister interface {
	ListDefinitions() []*toolx.Definition
}

// Server is the inbound HTTP surface in front of the recommender.
type Server struct {
	app         *fiber.App
	cfg         Config
	recommender contractx.Recommender
	profiles    UserProfiles
	tools       ToolLister
	base        zerolog.Logger
}

// New builds the fiber app. profiles and tools may be nil.
func New(cfg Config, recommender contractx.Recommender, profiles UserProfiles, tools ToolLister) *Server {
	s := &Server{
		cfg:         cfg,
		recommender: recommender,
		profiles:    profiles,
		tools:       tools,
		base:        log.Logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "food-recommendation-agent",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(s.requestContext)
	app.Get("/healthz", s.handleHealth)
	app.Get("/tools", s.handleListTools)
	app.Post("/users/:user_id/recommendations", s.handleRecommend)
	app.Post("/generate_options", s.handleOptions)

	s.app = app
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	s.base.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
	return s.app.Listen(s.cfg.Addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// requestContext tags the request with an id and puts a request-scoped logger
// and deadline into the user context.
func (s *Server) requestContext(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)

	logger := s.base.With().
		Str("request_id", id).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Logger()

	ctx := logger.WithContext(context.Background())
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}
	c.SetUserContext(ctx)

	start := time.Now()
	err := c.Next()
	logger.Debug().
		Int("status", c.Response().StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("request handled")
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		zerolog.Ctx(c.UserContext()).Error().Err(err).Msg("request failed")
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
