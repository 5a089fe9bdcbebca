package tool

import (
	"context"
	"errors"
	"testing"

	catalogx "github.com/tanpawarit/food-recommendation-agent/agent/catalog"
	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

type fakeCatalog struct {
	searchParams catalogx.SearchRestaurantsParams
	menuParams   catalogx.SearchMenuItemsParams
	priceCalls   int
	err          error
}

func (f *fakeCatalog) SearchRestaurants(_ context.Context, p catalogx.SearchRestaurantsParams) ([]catalogx.Row, error) {
	f.searchParams = p
	if f.err != nil {
		return nil, f.err
	}
	return []catalogx.Row{{"restaurant_id": "r1", "name": "Luigi's", "cuisine": "Italian"}}, nil
}

func (f *fakeCatalog) GetRestaurantMenu(context.Context, string, int) ([]catalogx.Row, error) {
	return []catalogx.Row{{"restaurant_id": "r1", "restaurant_name": "Luigi's", "name": "Margherita"}}, nil
}

func (f *fakeCatalog) SearchMenuItems(_ context.Context, p catalogx.SearchMenuItemsParams) ([]catalogx.Row, error) {
	f.menuParams = p
	return []catalogx.Row{}, nil
}

func (f *fakeCatalog) GetPopularCuisines(context.Context, int) ([]catalogx.Row, error) {
	return []catalogx.Row{{"cuisine": "Thai", "count": 12}}, nil
}

func (f *fakeCatalog) GetUserOrderHistory(context.Context, string, int) ([]catalogx.Row, error) {
	return []catalogx.Row{}, nil
}

func (f *fakeCatalog) GetUserFavoriteCuisines(context.Context, string, int) ([]catalogx.Row, error) {
	return []catalogx.Row{{"cuisine": "Thai", "order_count": 3}}, nil
}

func (f *fakeCatalog) GetSimilarRestaurants(context.Context, string, int) ([]catalogx.Row, error) {
	return []catalogx.Row{}, nil
}

func (f *fakeCatalog) SearchRestaurantsByIngredient(context.Context, string, int) ([]catalogx.Row, error) {
	return []catalogx.Row{}, nil
}

func (f *fakeCatalog) GetPriceRangeItems(context.Context, float64, float64, int) ([]catalogx.Row, error) {
	f.priceCalls++
	return []catalogx.Row{}, nil
}

func (f *fakeCatalog) GetUserPreferences(context.Context, string) ([]catalogx.Row, error) {
	return []catalogx.Row{{"spice_level": "hot"}}, nil
}

func TestNewCatalogRegistryRegistersAllTools(t *testing.T) {
	t.Parallel()

	r, err := NewCatalogRegistry(&fakeCatalog{})
	if err != nil {
		t.Fatalf("NewCatalogRegistry() error = %v", err)
	}

	want := []string{
		ToolGetPopularCuisines,
		ToolGetPriceRangeItems,
		ToolGetRestaurantMenu,
		ToolGetSimilarRestaurants,
		ToolGetUserFavoriteCuisines,
		ToolGetUserOrderHistory,
		ToolGetUserPreferences,
		ToolSearchMenuItems,
		ToolSearchRestaurants,
		ToolSearchRestaurantsByIngredient,
	}
	defs := r.ListDefinitions()
	if len(defs) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(defs))
	}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Fatalf("defs[%d] = %s, want %s", i, def.Name, want[i])
		}
	}
	if len(r.ToolInfos()) != len(want) {
		t.Fatalf("expected %d tool infos", len(want))
	}

	if err := r.Register(Definition{Name: "extra", Handler: echoHandler}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("catalog registry should be frozen, got %v", err)
	}
}

func TestSearchRestaurantsToolPassesArguments(t *testing.T) {
	t.Parallel()

	fake := &fakeCatalog{}
	r, err := NewCatalogRegistry(fake)
	if err != nil {
		t.Fatalf("NewCatalogRegistry() error = %v", err)
	}

	out := r.Execute(context.Background(), contractx.ToolCall{
		ID:   "call_1",
		Tool: ToolSearchRestaurants,
		Args: map[string]any{"search_term": "pizza", "cuisine_type": "Italian", "limit": float64(3)},
	})
	if out.Error != nil {
		t.Fatalf("unexpected tool error: %+v", out.Error)
	}
	if fake.searchParams.SearchTerm != "pizza" || fake.searchParams.CuisineType != "Italian" || fake.searchParams.Limit != 3 {
		t.Fatalf("unexpected params: %+v", fake.searchParams)
	}
	if len(out.Entities) != 1 || out.Entities[0].ID != "r1" || out.Entities[0].Name != "Luigi's" {
		t.Fatalf("unexpected entities: %+v", out.Entities)
	}
}

func TestMenuToolEntitiesUseRestaurantName(t *testing.T) {
	t.Parallel()

	r, err := NewCatalogRegistry(&fakeCatalog{})
	if err != nil {
		t.Fatalf("NewCatalogRegistry() error = %v", err)
	}

	out := r.Execute(context.Background(), contractx.ToolCall{
		ID:   "call_1",
		Tool: ToolGetRestaurantMenu,
		Args: map[string]any{"restaurant_id": "r1"},
	})
	if len(out.Entities) != 1 || out.Entities[0].Name != "Luigi's" {
		t.Fatalf("unexpected entities: %+v", out.Entities)
	}
}

func TestAggregateToolsHaveNoEntities(t *testing.T) {
	t.Parallel()

	r, err := NewCatalogRegistry(&fakeCatalog{})
	if err != nil {
		t.Fatalf("NewCatalogRegistry() error = %v", err)
	}

	out := r.Execute(context.Background(), contractx.ToolCall{ID: "call_1", Tool: ToolGetPopularCuisines})
	if out.Error != nil {
		t.Fatalf("unexpected tool error: %+v", out.Error)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out.Rows))
	}
	if len(out.Entities) != 0 {
		t.Fatalf("expected no entities, got %+v", out.Entities)
	}
}

func TestSearchMenuItemsMaxPriceCoercion(t *testing.T) {
	t.Parallel()

	fake := &fakeCatalog{}
	r, err := NewCatalogRegistry(fake)
	if err != nil {
		t.Fatalf("NewCatalogRegistry() error = %v", err)
	}

	out := r.Execute(context.Background(), contractx.ToolCall{
		ID:   "call_1",
		Tool: ToolSearchMenuItems,
		Args: map[string]any{"search_term": "noodle", "max_price": "12"},
	})
	if out.Error != nil {
		t.Fatalf("unexpected tool error: %+v", out.Error)
	}
	if fake.menuParams.MaxPrice == nil || *fake.menuParams.MaxPrice != 12 {
		t.Fatalf("unexpected max price: %v", fake.menuParams.MaxPrice)
	}

	out = r.Execute(context.Background(), contractx.ToolCall{
		ID:   "call_2",
		Tool: ToolSearchMenuItems,
		Args: map[string]any{"search_term": "noodle", "max_price": "cheap"},
	})
	if out.Error == nil || out.Error.Kind != "invalid_argument" {
		t.Fatalf("expected invalid_argument, got %+v", out.Error)
	}
}

func TestPriceRangeRejectsInvertedBounds(t *testing.T) {
	t.Parallel()

	fake := &fakeCatalog{}
	r, err := NewCatalogRegistry(fake)
	if err != nil {
		t.Fatalf("NewCatalogRegistry() error = %v", err)
	}

	out := r.Execute(context.Background(), contractx.ToolCall{
		ID:   "call_1",
		Tool: ToolGetPriceRangeItems,
		Args: map[string]any{"min_price": 30.0, "max_price": 10.0},
	})
	if out.Error == nil || out.Error.Kind != "invalid_argument" {
		t.Fatalf("expected invalid_argument, got %+v", out.Error)
	}
	if fake.priceCalls != 0 {
		t.Fatalf("catalog should not be queried, got %d calls", fake.priceCalls)
	}
}

func TestCatalogErrorBecomesPayload(t *testing.T) {
	t.Parallel()

	r, err := NewCatalogRegistry(&fakeCatalog{err: contractx.ErrDataAccess})
	if err != nil {
		t.Fatalf("NewCatalogRegistry() error = %v", err)
	}

	out := r.Execute(context.Background(), contractx.ToolCall{
		ID:   "call_1",
		Tool: ToolSearchRestaurants,
		Args: map[string]any{"search_term": "pizza"},
	})
	if out.Error == nil || out.Error.Kind != "data_access" {
		t.Fatalf("expected data_access error, got %+v", out.Error)
	}
	payload := out.Payload()
	if _, ok := payload["error"]; !ok {
		t.Fatalf("payload should carry error: %v", payload)
	}
}
