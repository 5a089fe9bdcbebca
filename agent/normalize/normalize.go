package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

const (
	DefaultCount            = 3
	DefaultPlaceholderLabel = "Default Option"
	DefaultFollowUpQuestion = "Would you like more specific recommendations?"
	OptionsCategory         = "food"
)

type Config struct {
	Count            int
	PlaceholderLabel string
	FollowUpQuestion string
}

// Normalizer turns raw agent output into well-shaped results. It never
// fails: unusable output degrades to a placeholder result.
type Normalizer struct {
	count       int
	placeholder string
	followUp    string
}

func New(cfg Config) *Normalizer {
	n := &Normalizer{
		count:       cfg.Count,
		placeholder: strings.TrimSpace(cfg.PlaceholderLabel),
		followUp:    strings.TrimSpace(cfg.FollowUpQuestion),
	}
	if n.count <= 0 {
		n.count = DefaultCount
	}
	if n.placeholder == "" {
		n.placeholder = DefaultPlaceholderLabel
	}
	if n.followUp == "" {
		n.followUp = DefaultFollowUpQuestion
	}
	return n
}

func (n *Normalizer) Count() int {
	return n.count
}

type RecommendationReport struct {
	Result contractx.RecommendationResult
	Mode   ParseMode
	Shape  Shape
}

type OptionsReport struct {
	Result contractx.OptionsResult
	Mode   ParseMode
	Shape  Shape
}

func (n *Normalizer) Recommendations(ctx context.Context, raw string) RecommendationReport {
	parsed, root, shape, items, ok := n.parse(ctx, raw)
	if !ok {
		return RecommendationReport{
			Result: n.FallbackRecommendations(cleanModelJSON(raw)),
			Mode:   ParseModeFallback,
			Shape:  ShapeNone,
		}
	}

	candidates := readCandidates(items)
	entries := make([]contractx.RecommendationEntry, 0, n.count)
	for _, c := range candidates {
		if len(entries) == n.count {
			break
		}
		entries = append(entries, contractx.RecommendationEntry{
			EntityID:         c.id,
			RestaurantName:   c.restaurant,
			ItemName:         c.item,
			Category:         c.category,
			ImageURL:         c.image,
			RecommendedItems: c.items,
			Reason:           c.reason,
		})
	}
	for len(entries) < n.count {
		entries = append(entries, n.placeholderEntry(len(entries)))
	}

	followUp := firstString(root, followUpAliases...)
	if followUp == "" {
		followUp = n.followUp
	}

	zerolog.Ctx(ctx).Debug().
		Str("parse_mode", string(parsed.Mode)).
		Str("shape", string(shape)).
		Int("candidates", len(candidates)).
		Msg("normalized recommendations")

	return RecommendationReport{
		Result: contractx.RecommendationResult{
			Summary:          firstString(root, summaryAliases...),
			Recommendations:  entries,
			FollowUpQuestion: followUp,
		},
		Mode:  parsed.Mode,
		Shape: shape,
	}
}

func (n *Normalizer) Options(ctx context.Context, raw string) OptionsReport {
	parsed, _, shape, items, ok := n.parse(ctx, raw)
	if !ok {
		return OptionsReport{
			Result: n.FallbackOptions(),
			Mode:   ParseModeFallback,
			Shape:  ShapeNone,
		}
	}

	options := make([]contractx.FoodOption, 0, n.count)
	for _, c := range readCandidates(items) {
		if len(options) == n.count {
			break
		}
		name := c.item
		if name == "" {
			name = c.restaurant
		}
		options = append(options, contractx.FoodOption{
			ItemName:    name,
			ItemImgURL:  c.image,
			ItemCuisine: c.category,
		})
	}
	for len(options) < n.count {
		options = append(options, n.placeholderOption(len(options)))
	}

	return OptionsReport{
		Result: contractx.OptionsResult{
			Category: OptionsCategory,
			Options:  options,
		},
		Mode:  parsed.Mode,
		Shape: shape,
	}
}

// FallbackRecommendations is the degraded result for unusable agent output.
func (n *Normalizer) FallbackRecommendations(summary string) contractx.RecommendationResult {
	entries := make([]contractx.RecommendationEntry, 0, n.count)
	for i := 0; i < n.count; i++ {
		entries = append(entries, n.placeholderEntry(i))
	}
	return contractx.RecommendationResult{
		Summary:          strings.TrimSpace(summary),
		Recommendations:  entries,
		FollowUpQuestion: n.followUp,
	}
}

func (n *Normalizer) FallbackOptions() contractx.OptionsResult {
	options := make([]contractx.FoodOption, 0, n.count)
	for i := 0; i < n.count; i++ {
		options = append(options, n.placeholderOption(i))
	}
	return contractx.OptionsResult{
		Category: OptionsCategory,
		Options:  options,
	}
}

func (n *Normalizer) parse(ctx context.Context, raw string) (Parsed, gjson.Result, Shape, []keyed, bool) {
	parsed, err := Parse(raw)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("agent output is not JSON, using fallback")
		return parsed, gjson.Result{}, ShapeNone, nil, false
	}

	root := gjson.Parse(parsed.Text)
	shape, items := locate(root)
	if shape == ShapeNone {
		err = fmt.Errorf("%w: no recognizable entry layout", contractx.ErrMalformedResponse)
		zerolog.Ctx(ctx).Warn().Err(err).Str("parse_mode", string(parsed.Mode)).Msg("using fallback")
		return parsed, root, shape, nil, false
	}
	return parsed, root, shape, items, true
}

func (n *Normalizer) placeholderLabel(i int) string {
	return fmt.Sprintf("%s %d", n.placeholder, i+1)
}

func (n *Normalizer) placeholderEntry(i int) contractx.RecommendationEntry {
	return contractx.RecommendationEntry{
		RestaurantName: n.placeholderLabel(i),
		Placeholder:    true,
	}
}

func (n *Normalizer) placeholderOption(i int) contractx.FoodOption {
	return contractx.FoodOption{
		ItemName:    n.placeholderLabel(i),
		Placeholder: true,
	}
}
