package api

import (
	"errors"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

type recommendBody struct {
	Query            string   `json:"query"`
	OrderCount       *int     `json:"order_count"`
	FavoriteCuisines []string `json:"favorite_cuisines"`
}

type optionsBody struct {
	InputText string `json:"input_text"`
	UserID    string `json:"user_id"`
}

type toolParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

type toolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []toolParam `json:"params"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleListTools(c *fiber.Ctx) error {
	out := []toolDescriptor{}
	if s.tools == nil {
		return c.JSON(out)
	}

	for _, def := range s.tools.ListDefinitions() {
		params := make([]toolParam, 0, len(def.Params))
		for name, p := range def.Params {
			params = append(params, toolParam{
				Name:        name,
				Type:        string(p.Type),
				Required:    p.Required,
				Description: p.Description,
			})
		}
		sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
		out = append(out, toolDescriptor{
			Name:        def.Name,
			Description: def.Description,
			Params:      params,
		})
	}
	return c.JSON(out)
}

func (s *Server) handleRecommend(c *fiber.Ctx) error {
	var body recommendBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := c.UserContext()
	userID := strings.TrimSpace(c.Params("user_id"))
	logger := zerolog.Ctx(ctx).With().Str("user_id", userID).Logger()
	ctx = logger.WithContext(ctx)

	req := contractx.RecommendationRequest{
		UserID:           userID,
		Query:            body.Query,
		FavoriteCuisines: body.FavoriteCuisines,
	}
	if body.OrderCount != nil {
		req.OrderCount = *body.OrderCount
	}

	if s.profiles != nil && userID != "" && (body.OrderCount == nil || body.FavoriteCuisines == nil) {
		profile, err := s.profiles.UserContext(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Msg("user context unavailable, continuing without it")
		} else {
			if body.OrderCount == nil {
				req.OrderCount = profile.OrderCount
			}
			if body.FavoriteCuisines == nil {
				req.FavoriteCuisines = profile.FavoriteCuisines
			}
		}
	}

	result, err := s.recommender.Recommend(ctx, req)
	switch {
	case err == nil:
		return c.JSON(result)
	case errors.Is(err, contractx.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, contractx.ErrRecommendationUnavailable):
		logger.Warn().Err(err).Msg("serving fallback recommendation")
		return c.Status(fiber.StatusServiceUnavailable).JSON(result)
	default:
		return err
	}
}

func (s *Server) handleOptions(c *fiber.Ctx) error {
	var body optionsBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := c.UserContext()
	result, err := s.recommender.Options(ctx, contractx.OptionsRequest{
		UserID:    strings.TrimSpace(body.UserID),
		InputText: body.InputText,
	})
	switch {
	case err == nil:
		return c.JSON(result)
	case errors.Is(err, contractx.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, contractx.ErrRecommendationUnavailable):
		zerolog.Ctx(ctx).Warn().Err(err).Msg("serving fallback options")
		return c.Status(fiber.StatusServiceUnavailable).JSON(result)
	default:
		return err
	}
}
