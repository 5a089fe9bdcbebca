package catalog

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

type SearchRestaurantsParams struct {
	SearchTerm  string
	CuisineType string
	Limit       int
}

func (c *Catalog) SearchRestaurants(ctx context.Context, p SearchRestaurantsParams) ([]Row, error) {
	pattern := likePattern(p.SearchTerm)
	q := c.db.NewSelect().
		TableExpr("restaurants AS r").
		ColumnExpr("r.restaurant_id, r.name, r.cuisine, r.borough").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("r.name ILIKE ?", pattern).
				WhereOr("r.cuisine ILIKE ?", pattern).
				WhereOr("r.borough ILIKE ?", pattern)
		})
	if p.CuisineType != "" {
		q = q.Where("r.cuisine ILIKE ?", likePattern(p.CuisineType))
	}
	q = q.OrderExpr("r.name ASC")

	return c.selectRows(ctx, "search restaurants", q, searchRestaurantsLimits.clamp(p.Limit))
}

func (c *Catalog) GetRestaurantMenu(ctx context.Context, restaurantID string, limit int) ([]Row, error) {
	q := c.db.NewSelect().
		TableExpr("menu_items AS mi").
		Join("JOIN restaurants AS r ON r.restaurant_id = mi.restaurant_id").
		ColumnExpr("mi.item_id, mi.name, mi.section, mi.description, mi.price, mi.image").
		ColumnExpr("r.restaurant_id, r.name AS restaurant_name").
		Where("mi.restaurant_id = ?", restaurantID).
		OrderExpr("mi.section ASC, mi.name ASC")

	return c.selectRows(ctx, "get restaurant menu", q, restaurantMenuLimits.clamp(limit))
}

type SearchMenuItemsParams struct {
	SearchTerm string
	MaxPrice   *float64
	Section    string
	Limit      int
}

func (c *Catalog) SearchMenuItems(ctx context.Context, p SearchMenuItemsParams) ([]Row, error) {
	pattern := likePattern(p.SearchTerm)
	q := c.db.NewSelect().
		TableExpr("menu_items AS mi").
		Join("JOIN restaurants AS r ON r.restaurant_id = mi.restaurant_id").
		ColumnExpr("mi.item_id, mi.name, mi.description, mi.price, mi.section").
		ColumnExpr("r.name AS restaurant_name, r.restaurant_id").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("mi.name ILIKE ?", pattern).
				WhereOr("mi.description ILIKE ?", pattern)
		})
	if p.MaxPrice != nil {
		q = q.Where("mi.price <= ?", *p.MaxPrice)
	}
	if p.Section != "" {
		q = q.Where("mi.section ILIKE ?", likePattern(p.Section))
	}
	q = q.OrderExpr("mi.price ASC")

	return c.selectRows(ctx, "search menu items", q, searchMenuItemsLimits.clamp(p.Limit))
}

func (c *Catalog) GetPopularCuisines(ctx context.Context, limit int) ([]Row, error) {
	q := c.db.NewSelect().
		TableExpr("restaurants AS r").
		ColumnExpr("r.cuisine, COUNT(*) AS count").
		Where("r.cuisine IS NOT NULL").
		Where("r.cuisine <> ''").
		GroupExpr("r.cuisine").
		OrderExpr("count DESC")

	return c.selectRows(ctx, "get popular cuisines", q, popularCuisinesLimits.clamp(limit))
}

func (c *Catalog) GetUserOrderHistory(ctx context.Context, userID string, limit int) ([]Row, error) {
	q := c.db.NewSelect().
		TableExpr("orders AS o").
		Join("JOIN restaurants AS r ON r.restaurant_id = o.restaurant_id").
		ColumnExpr("o.order_id, o.items, o.created_at").
		ColumnExpr("r.restaurant_id, r.name AS restaurant_name, r.cuisine").
		Where("o.user_id = ?", userID).
		OrderExpr("o.created_at DESC")

	rows, err := c.selectRows(ctx, "get user order history", q, orderHistoryLimits.clamp(limit))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		decodeJSONColumn(row, "items")
	}
	return rows, nil
}

func (c *Catalog) GetUserFavoriteCuisines(ctx context.Context, userID string, limit int) ([]Row, error) {
	q := favoriteCuisinesQuery(c.db, userID)
	return c.selectRows(ctx, "get user favorite cuisines", q, favoriteCuisinesLimits.clamp(limit))
}

func favoriteCuisinesQuery(db bun.IDB, userID string) *bun.SelectQuery {
	return db.NewSelect().
		TableExpr("orders AS o").
		Join("JOIN restaurants AS r ON r.restaurant_id = o.restaurant_id").
		ColumnExpr("r.cuisine, COUNT(*) AS count").
		Where("o.user_id = ?", userID).
		Where("r.cuisine IS NOT NULL").
		Where("r.cuisine <> ''").
		GroupExpr("r.cuisine").
		OrderExpr("count DESC")
}

// GetSimilarRestaurants returns restaurants sharing the reference restaurant's
// cuisine. An unknown reference yields no rows.
func (c *Catalog) GetSimilarRestaurants(ctx context.Context, restaurantID string, limit int) ([]Row, error) {
	reference := c.db.NewSelect().
		TableExpr("restaurants AS ref").
		ColumnExpr("ref.cuisine").
		Where("ref.restaurant_id = ?", restaurantID).
		Limit(1)

	q := c.db.NewSelect().
		TableExpr("restaurants AS r").
		ColumnExpr("r.restaurant_id, r.name, r.cuisine, r.borough").
		Where("r.cuisine = (?)", reference).
		Where("r.restaurant_id <> ?", restaurantID).
		OrderExpr("r.name ASC")

	return c.selectRows(ctx, "get similar restaurants", q, similarRestaurantsLimits.clamp(limit))
}

func (c *Catalog) SearchRestaurantsByIngredient(ctx context.Context, ingredient string, limit int) ([]Row, error) {
	q := c.db.NewSelect().
		Distinct().
		TableExpr("restaurants AS r").
		Join("JOIN restaurant_ingredients AS ri ON ri.restaurant_id = r.restaurant_id").
		Join("JOIN ingredients AS i ON i.ingredient_id = ri.ingredient_id").
		ColumnExpr("r.restaurant_id, r.name, r.cuisine, r.borough").
		ColumnExpr("i.name AS ingredient").
		Where("i.name ILIKE ?", likePattern(ingredient)).
		OrderExpr("r.name ASC")

	return c.selectRows(ctx, "search restaurants by ingredient", q, ingredientSearchLimits.clamp(limit))
}

func (c *Catalog) GetPriceRangeItems(ctx context.Context, minPrice, maxPrice float64, limit int) ([]Row, error) {
	q := c.db.NewSelect().
		TableExpr("menu_items AS mi").
		Join("JOIN restaurants AS r ON r.restaurant_id = mi.restaurant_id").
		ColumnExpr("mi.item_id, mi.name, mi.price").
		ColumnExpr("r.restaurant_id, r.name AS restaurant_name").
		Where("mi.price >= ?", minPrice).
		Where("mi.price <= ?", maxPrice).
		OrderExpr("mi.price ASC")

	return c.selectRows(ctx, "get price range items", q, priceRangeLimits.clamp(limit))
}

func (c *Catalog) GetUserPreferences(ctx context.Context, userID string) ([]Row, error) {
	q := c.db.NewSelect().
		TableExpr("user_preferences AS up").
		ColumnExpr("up.dietary_restrictions, up.spice_level, up.preferred_protein, up.avoid, up.other_preferences").
		Where("up.user_id = ?", userID)

	return c.selectRows(ctx, "get user preferences", q, userPreferencesLimits.clamp(0))
}

// UserContext is the minimal profile attached to a recommendation request.
type UserContext struct {
	OrderCount       int
	FavoriteCuisines []string
}

func (c *Catalog) UserContext(ctx context.Context, userID string) (UserContext, error) {
	countQ := c.db.NewSelect().
		TableExpr("orders AS o").
		ColumnExpr("COUNT(*) AS order_count").
		Where("o.user_id = ?", userID)

	countRows, err := c.selectRows(ctx, "count user orders", countQ, 1)
	if err != nil {
		return UserContext{}, err
	}

	out := UserContext{}
	if len(countRows) > 0 {
		out.OrderCount = toInt(countRows[0]["order_count"])
	}

	cuisineRows, err := c.selectRows(ctx, "get user context cuisines",
		favoriteCuisinesQuery(c.db, userID), userContextCuisinesLimits.clamp(0))
	if err != nil {
		return UserContext{}, err
	}
	for _, row := range cuisineRows {
		if cuisine, ok := row["cuisine"].(string); ok && cuisine != "" {
			out.FavoriteCuisines = append(out.FavoriteCuisines, cuisine)
		}
	}
	return out, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		var out int
		if _, err := fmt.Sscan(n, &out); err == nil {
			return out
		}
	}
	return 0
}
