package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

// HardRowCap bounds every query regardless of the per-method cap or the
// limit the caller asked for.
const HardRowCap = 50

// Row is one result row keyed by column name.
type Row = map[string]any

type scanFunc func(ctx context.Context, q *bun.SelectQuery, dest *[]map[string]any) error

// Catalog is the read-only accessor the tool registry executes against.
// It only ever builds SELECT queries and is safe for concurrent use.
type Catalog struct {
	db   bun.IDB
	scan scanFunc
}

func New(db bun.IDB) *Catalog {
	return newCatalog(db, func(ctx context.Context, q *bun.SelectQuery, dest *[]map[string]any) error {
		return q.Scan(ctx, dest)
	})
}

func newCatalog(db bun.IDB, scan scanFunc) *Catalog {
	return &Catalog{db: db, scan: scan}
}

type limits struct {
	def int
	max int
}

var (
	searchRestaurantsLimits   = limits{def: 5, max: 20}
	restaurantMenuLimits      = limits{def: 10, max: 50}
	searchMenuItemsLimits     = limits{def: 10, max: 30}
	popularCuisinesLimits     = limits{def: 10, max: 20}
	orderHistoryLimits        = limits{def: 5, max: 20}
	favoriteCuisinesLimits    = limits{def: 3, max: 10}
	similarRestaurantsLimits  = limits{def: 3, max: 10}
	ingredientSearchLimits    = limits{def: 5, max: 20}
	priceRangeLimits          = limits{def: 10, max: 20}
	userPreferencesLimits     = limits{def: 1, max: 1}
	userContextCuisinesLimits = limits{def: 3, max: 3}
)

func (l limits) clamp(requested int) int {
	n := requested
	if n <= 0 {
		n = l.def
	}
	if n > l.max {
		n = l.max
	}
	if n > HardRowCap {
		n = HardRowCap
	}
	return n
}

func (c *Catalog) selectRows(ctx context.Context, op string, q *bun.SelectQuery, limit int) ([]Row, error) {
	var rows []map[string]any
	if err := c.scan(ctx, q.Limit(limit), &rows); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", contractx.ErrDataAccess, op, err)
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	for _, row := range rows {
		normalizeRow(row)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows, nil
}

func normalizeRow(row Row) {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
}

// likePattern builds a contains-pattern with LIKE metacharacters escaped.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

// decodeJSONColumn replaces a JSON-encoded text column with its decoded value.
func decodeJSONColumn(row Row, column string) {
	raw, ok := row[column].(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return
	}
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		row[column] = decoded
	}
}
