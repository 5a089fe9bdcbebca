package tool

import (
	"context"
	"fmt"

	catalogx "github.com/tanpawarit/food-recommendation-agent/agent/catalog"
	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

const (
	ToolSearchRestaurants             = "search_restaurants"
	ToolGetRestaurantMenu             = "get_restaurant_menu"
	ToolSearchMenuItems               = "search_menu_items"
	ToolGetPopularCuisines            = "get_popular_cuisines"
	ToolGetUserOrderHistory           = "get_user_order_history"
	ToolGetUserFavoriteCuisines       = "get_user_favorite_cuisines"
	ToolGetSimilarRestaurants         = "get_similar_restaurants"
	ToolSearchRestaurantsByIngredient = "search_restaurants_by_ingredient"
	ToolGetPriceRangeItems            = "get_price_range_items"
	ToolGetUserPreferences            = "get_user_preferences"
)

// Catalog is the read-only query surface the catalog tools run against.
type Catalog interface {
	SearchRestaurants(ctx context.Context, p catalogx.SearchRestaurantsParams) ([]catalogx.Row, error)
	GetRestaurantMenu(ctx context.Context, restaurantID string, limit int) ([]catalogx.Row, error)
	SearchMenuItems(ctx context.Context, p catalogx.SearchMenuItemsParams) ([]catalogx.Row, error)
	GetPopularCuisines(ctx context.Context, limit int) ([]catalogx.Row, error)
	GetUserOrderHistory(ctx context.Context, userID string, limit int) ([]catalogx.Row, error)
	GetUserFavoriteCuisines(ctx context.Context, userID string, limit int) ([]catalogx.Row, error)
	GetSimilarRestaurants(ctx context.Context, restaurantID string, limit int) ([]catalogx.Row, error)
	SearchRestaurantsByIngredient(ctx context.Context, ingredient string, limit int) ([]catalogx.Row, error)
	GetPriceRangeItems(ctx context.Context, minPrice, maxPrice float64, limit int) ([]catalogx.Row, error)
	GetUserPreferences(ctx context.Context, userID string) ([]catalogx.Row, error)
}

var (
	restaurantEntity = EntityKeys{ID: "restaurant_id", Name: "name"}
	menuEntity       = EntityKeys{ID: "restaurant_id", Name: "restaurant_name"}
)

func limitParam(desc string) Param {
	return Param{Type: Integer, Description: desc}
}

// NewCatalogRegistry registers every catalog tool and freezes the registry.
func NewCatalogRegistry(c Catalog) (*Registry, error) {
	r := NewRegistry()
	for _, def := range CatalogDefinitions(c) {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	r.Freeze()
	return r, nil
}

func CatalogDefinitions(c Catalog) []Definition {
	return []Definition{
		{
			Name:        ToolSearchRestaurants,
			Description: "Search restaurants by name, cuisine, or borough.",
			Params: map[string]Param{
				"search_term":  {Type: String, Required: true, Description: "Text matched against restaurant name, cuisine, and borough"},
				"cuisine_type": {Type: String, Description: "Optional cuisine filter"},
				"limit":        limitParam("Maximum results (default 5, max 20)"),
			},
			Entities: restaurantEntity,
			Handler: func(ctx context.Context, args Args) ([]map[string]any, error) {
				return c.SearchRestaurants(ctx, catalogx.SearchRestaurantsParams{
					SearchTerm:  args.String("search_term"),
					CuisineType: args.String("cuisine_type"),
					Limit:       args.Int("limit"),
				})
			},
		},
		{
			Name:        ToolGetRestaurantMenu,
			Description: "Get menu items for a specific restaurant.",
			Params: map[string]Param{
				"restaurant_id": {Type: String, Required: true, Description: "Restaurant identifier"},
				"limit":         limitParam("Maximum items (default 10, max 50)"),
			},
			Entities: menuEntity,
			Handler: func(ctx context.Context, args Args) ([]map[string]any, error) {
				return c.GetRestaurantMenu(ctx, args.String("restaurant_id"), args.Int("limit"))
			},
		},
		{
			Name:        ToolSearchMenuItems,
			Description: "Search menu items by name or description, optionally filtered by price and section.",
			Params: map[string]Param{
				"search_term": {Type: String, Required: true, Description: "Text matched against item name and description"},
				"max_price":   {Type: Number, Description: "Optional maximum price"},
				"section":     {Type: String, Description: "Optional menu section, for example Appetizers"},
				"limit":       limitParam("Maximum items (default 10, max 30)"),
			},
			Entities: menuEntity,
			Handler: func(ctx context.Context, args Args) ([]map[string]any, error) {
				p := catalogx.SearchMenuItemsParams{
					SearchTerm: args.String("search_term"),
					Section:    args.String("section"),
					Limit:      args.Int("limit"),
				}
				if maxPrice, ok := args.Float("max_price"); ok {
					if maxPrice < 0 {
						return nil, fmt.Errorf("%w: max_price must not be negative", contractx.ErrInvalidArgument)
					}
					p.MaxPrice = &maxPrice
				}
				return c.SearchMenuItems(ctx, p)
			},
		},
		{
			Name:        ToolGetPopularCuisines,
			Description: "List the most common cuisines by restaurant count.",
			Params: map[string]Param{
				"limit": limitParam("Maximum cuisines (default 10, max 20)"),
			},
			Handler: func(ctx context.Context, args Args) ([]map[string]any, error) {
				return c.GetPopularCuisines(ctx, args.Int("limit"))
			},
		},
		{
			Name:        ToolGetUserOrderHistory,
			Description: "Get a user's most recent orders.",
			Params: map[string]Param{
				"user_id": {Type: String, Required: true, Description: "User identifier"},
				"limit":   limitParam("Maximum orders (default 5, max 20)"),
			},
			Entities: menuEntity,
			Handler: func(ctx context.Context, args Args) ([]map[string]any, error) {
				return c.GetUserOrderHistory(ctx, args.String("user_id"), args.Int("limit"))
			},
		},
		{
			Name:        ToolGetUserFavoriteCuisines,
			Description: "Get the cuisines a user orders most often.",
			Params: map[string]Param{
				"user_id": {Type: String, Required: true, Description: "User identifier"},
				"limit":   limitParam("Maximum cuisines (default 3, max 10)"),
			},
			Handler: func(ctx context.Context, args Args) ([]map[string]any, error) {
				return c.GetUserFavoriteCuisines(ctx, args.String("user_id"), args.Int("limit"))
			},
		},
		{
			Name:        ToolGetSimilarRestaurants,
			Description: "Find restaurants with the same cuisine as a reference restaurant.",
			Params: map[string]Param{
				"restaurant_id": {Type: String, Required: true, Description: "Reference restaurant identifier"},
				"limit":         limitParam("Maximum restaurants (default 3, max 10)"),
			},
			Entities: restaurantEntity,
			Handler: func(ctx context.Context, args Args) ([]map[string]any, error) {
				return c.GetSimilarRestaurants(ctx, args.String("restaurant_id"), args.Int("limit"))
			},
		},
		{
			Name:        ToolSearchRestaurantsByIngredient,
			Description: "Find restaurants that use a given ingredient.",
			Params: map[string]Param{
				"ingredient": {Type: String, Required: true, Description: "Ingredient name"},
				"limit":      limitParam("Maximum restaurants (default 5, max 20)"),
			},
			Entities: restaurantEntity,
			Handler: func(ctx context.Context, args Args) ([]map[string]any, error) {
				return c.SearchRestaurantsByIngredient(ctx, args.String("ingredient"), args.Int("limit"))
			},
		},
		{
			Name:        ToolGetPriceRangeItems,
			Description: "List menu items priced within an inclusive range.",
			Params: map[string]Param{
				"min_price": {Type: Number, Required: true, Description: "Minimum price"},
				"max_price": {Type: Number, Required: true, Description: "Maximum price"},
				"limit":     limitParam("Maximum items (default 10, max 20)"),
			},
			Entities: menuEntity,
			Handler: func(ctx context.Context, args Args) ([]map[string]any, error) {
				minPrice, _ := args.Float("min_price")
				maxPrice, _ := args.Float("max_price")
				if minPrice < 0 || maxPrice < minPrice {
					return nil, fmt.Errorf("%w: price range [%v, %v] is invalid", contractx.ErrInvalidArgument, minPrice, maxPrice)
				}
				return c.GetPriceRangeItems(ctx, minPrice, maxPrice, args.Int("limit"))
			},
		},
		{
			Name:        ToolGetUserPreferences,
			Description: "Get a user's stated dietary preferences.",
			Params: map[string]Param{
				"user_id": {Type: String, Required: true, Description: "User identifier"},
			},
			Handler: func(ctx context.Context, args Args) ([]map[string]any, error) {
				return c.GetUserPreferences(ctx, args.String("user_id"))
			},
		},
	}
}
