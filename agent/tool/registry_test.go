package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

func echoHandler(_ context.Context, args Args) ([]map[string]any, error) {
	return []map[string]any{{"args": map[string]any(args)}}, nil
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	def := Definition{Name: "echo", Handler: echoHandler}
	if err := r.Register(def); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	err := r.Register(def)
	if !errors.Is(err, contractx.ErrDuplicateTool) {
		t.Fatalf("expected ErrDuplicateTool, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  Definition
	}{
		{name: "empty name", def: Definition{Name: "  ", Handler: echoHandler}},
		{name: "nil handler", def: Definition{Name: "x"}},
		{name: "bad param type", def: Definition{
			Name:    "x",
			Handler: echoHandler,
			Params:  map[string]Param{"a": {Type: "object"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := NewRegistry().Register(tt.def); !errors.Is(err, contractx.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestRegisterAfterFreeze(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Freeze()
	if err := r.Register(Definition{Name: "late", Handler: echoHandler}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestResolveUnknownTool(t *testing.T) {
	t.Parallel()

	_, _, err := NewRegistry().Resolve("nope", nil)
	if !errors.Is(err, contractx.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestResolveCoercesArguments(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(Definition{
		Name:    "typed",
		Handler: echoHandler,
		Params: map[string]Param{
			"term":  {Type: String, Required: true},
			"price": {Type: Number},
			"limit": {Type: Integer},
			"flag":  {Type: Boolean},
		},
	})

	_, args, err := r.Resolve("typed", map[string]any{
		"term":  " pizza ",
		"price": "15.5",
		"limit": float64(4),
		"flag":  "true",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := args.String("term"); got != "pizza" {
		t.Fatalf("term = %q", got)
	}
	if got, ok := args.Float("price"); !ok || got != 15.5 {
		t.Fatalf("price = %v, %v", got, ok)
	}
	if got := args.Int("limit"); got != 4 {
		t.Fatalf("limit = %d", got)
	}
	if !args.Bool("flag") {
		t.Fatal("flag should be true")
	}
}

func TestResolveRejectsInvalidArguments(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(Definition{
		Name:    "typed",
		Handler: echoHandler,
		Params: map[string]Param{
			"term":  {Type: String, Required: true},
			"price": {Type: Number},
			"limit": {Type: Integer},
		},
	})

	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing required", args: map[string]any{"price": 3.0}},
		{name: "blank required", args: map[string]any{"term": "   "}},
		{name: "unknown param", args: map[string]any{"term": "x", "color": "red"}},
		{name: "non numeric price", args: map[string]any{"term": "x", "price": "cheap"}},
		{name: "fractional integer", args: map[string]any{"term": "x", "limit": 2.5}},
		{name: "string typed as number", args: map[string]any{"term": 42.0}},
		{name: "integer above int64", args: map[string]any{"term": "x", "limit": 1e20}},
		{name: "integer below int64", args: map[string]any{"term": "x", "limit": -1e20}},
		{name: "integer at two to the 63", args: map[string]any{"term": "x", "limit": 9223372036854775808.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := r.Resolve("typed", tt.args)
			if !errors.Is(err, contractx.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestListDefinitionsSorted(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		r.MustRegister(Definition{Name: name, Handler: echoHandler})
	}

	defs := r.ListDefinitions()
	want := []string{"alpha", "mid", "zeta"}
	if len(defs) != len(want) {
		t.Fatalf("expected %d definitions, got %d", len(want), len(defs))
	}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Fatalf("defs[%d] = %s, want %s", i, def.Name, want[i])
		}
	}
}

func TestToolInfosDescribeParams(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(Definition{
		Name:        "search",
		Description: "Search things.",
		Handler:     echoHandler,
		Params: map[string]Param{
			"term": {Type: String, Required: true, Description: "Search text"},
		},
	})

	infos := r.ToolInfos()
	if len(infos) != 1 {
		t.Fatalf("expected 1 tool info, got %d", len(infos))
	}
	if infos[0].Name != "search" || infos[0].Desc != "Search things." {
		t.Fatalf("unexpected tool info: %+v", infos[0])
	}
	if infos[0].ParamsOneOf == nil {
		t.Fatal("expected params schema")
	}
	if got := String.dataType(); got != schema.String {
		t.Fatalf("String.dataType() = %v", got)
	}
	if got := Integer.dataType(); got != schema.Integer {
		t.Fatalf("Integer.dataType() = %v", got)
	}
}

func TestExecuteReturnsStructuredErrors(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(Definition{
		Name: "broken",
		Handler: func(context.Context, Args) ([]map[string]any, error) {
			return nil, contractx.ErrDataAccess
		},
	})

	tests := []struct {
		name string
		call contractx.ToolCall
		kind string
	}{
		{name: "unknown tool", call: contractx.ToolCall{ID: "c1", Tool: "missing"}, kind: "unknown_tool"},
		{name: "invalid argument", call: contractx.ToolCall{ID: "c2", Tool: "broken", Args: map[string]any{"x": 1}}, kind: "invalid_argument"},
		{name: "data access", call: contractx.ToolCall{ID: "c3", Tool: "broken"}, kind: "data_access"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := r.Execute(context.Background(), tt.call)
			if out.CallID != tt.call.ID {
				t.Fatalf("CallID = %q, want %q", out.CallID, tt.call.ID)
			}
			if out.Error == nil {
				t.Fatal("expected tool error")
			}
			if out.Error.Kind != tt.kind {
				t.Fatalf("Kind = %q, want %q", out.Error.Kind, tt.kind)
			}
			if out.Rows != nil {
				t.Fatalf("expected no rows, got %v", out.Rows)
			}
		})
	}
}

func TestExecuteExtractsEntities(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(Definition{
		Name:     "restaurants",
		Entities: EntityKeys{ID: "restaurant_id", Name: "name"},
		Handler: func(context.Context, Args) ([]map[string]any, error) {
			return []map[string]any{
				{"restaurant_id": "r1", "name": "Luigi's"},
				{"restaurant_id": 7, "name": "Seven"},
				{"cuisine": "Thai"},
			}, nil
		},
	})

	out := r.Execute(context.Background(), contractx.ToolCall{ID: "c1", Tool: "restaurants"})
	if out.Error != nil {
		t.Fatalf("unexpected tool error: %+v", out.Error)
	}
	if len(out.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out.Rows))
	}
	if len(out.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %+v", out.Entities)
	}
	if out.Entities[1].ID != "7" || out.Entities[1].Name != "Seven" {
		t.Fatalf("unexpected entity: %+v", out.Entities[1])
	}
}

func TestExecuteEmptyResultIsNotError(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(Definition{
		Name: "empty",
		Handler: func(context.Context, Args) ([]map[string]any, error) {
			return nil, nil
		},
	})

	out := r.Execute(context.Background(), contractx.ToolCall{ID: "c1", Tool: "empty"})
	if out.Error != nil {
		t.Fatalf("unexpected tool error: %+v", out.Error)
	}
	if out.Rows == nil || len(out.Rows) != 0 {
		t.Fatalf("expected empty non-nil rows, got %#v", out.Rows)
	}
}
