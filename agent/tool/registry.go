package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

type ParamType string

const (
	String  ParamType = "string"
	Integer ParamType = "integer"
	Number  ParamType = "number"
	Boolean ParamType = "boolean"
)

type Param struct {
	Type        ParamType
	Required    bool
	Description string
}

// EntityKeys names the result columns that identify a catalog entity in a
// tool's rows. Tools that return aggregates leave both empty.
type EntityKeys struct {
	ID   string
	Name string
}

// Handler runs a tool with arguments already validated against its params.
type Handler func(ctx context.Context, args Args) ([]map[string]any, error)

type Definition struct {
	Name        string
	Description string
	Params      map[string]Param
	Entities    EntityKeys
	Handler     Handler
}

// Registry maps tool names to typed handlers. Definitions are registered at
// startup; after Freeze the registry is read-only and safe to share.
type Registry struct {
	defs   map[string]*Definition
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
	}
}

func (r *Registry) Register(def Definition) error {
	if r.frozen {
		return fmt.Errorf("%w: registry is frozen, cannot register %q", contractx.ErrValidation, def.Name)
	}

	name := strings.TrimSpace(def.Name)
	if name == "" {
		return fmt.Errorf("%w: tool name is empty", contractx.ErrValidation)
	}
	if def.Handler == nil {
		return fmt.Errorf("%w: tool=%s has no handler", contractx.ErrValidation, name)
	}
	for pname, p := range def.Params {
		if !p.Type.valid() {
			return fmt.Errorf("%w: tool=%s param=%s has unsupported type %q", contractx.ErrValidation, name, pname, p.Type)
		}
	}
	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("%w: %s", contractx.ErrDuplicateTool, name)
	}

	params := make(map[string]Param, len(def.Params))
	for k, v := range def.Params {
		params[k] = v
	}
	def.Name = name
	def.Params = params
	r.defs[name] = &def
	return nil
}

func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

func (r *Registry) Freeze() {
	r.frozen = true
}

// Resolve looks up a tool and validates raw agent arguments against its
// declared params.
func (r *Registry) Resolve(name string, raw map[string]any) (*Definition, Args, error) {
	def, ok := r.defs[strings.TrimSpace(name)]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", contractx.ErrUnknownTool, name)
	}

	args, err := coerceArgs(def.Params, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("tool=%s: %w", def.Name, err)
	}
	return def, args, nil
}

// ListDefinitions returns every definition sorted by name.
func (r *Registry) ListDefinitions() []*Definition {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Definition, 0, len(names))
	for _, name := range names {
		out = append(out, r.defs[name])
	}
	return out
}

// ToolInfos renders the registry as the tool schema advertised to the agent.
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	defs := r.ListDefinitions()
	infos := make([]*schema.ToolInfo, 0, len(defs))
	for _, def := range defs {
		params := make(map[string]*schema.ParameterInfo, len(def.Params))
		for pname, p := range def.Params {
			params[pname] = &schema.ParameterInfo{
				Type:     p.Type.dataType(),
				Desc:     p.Description,
				Required: p.Required,
			}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        def.Name,
			Desc:        def.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

// Execute resolves and runs one call. Failures never escape: they come back
// as a structured error payload for the agent to read.
func (r *Registry) Execute(ctx context.Context, call contractx.ToolCall) contractx.ToolResult {
	logger := zerolog.Ctx(ctx).With().
		Str("tool", call.Tool).
		Str("call_id", call.ID).
		Logger()

	result := contractx.ToolResult{
		CallID: call.ID,
		Tool:   call.Tool,
	}

	def, args, err := r.Resolve(call.Tool, call.Args)
	if err != nil {
		logger.Warn().Err(err).Msg("tool call rejected")
		result.Error = toolError(err)
		return result
	}

	start := time.Now()
	rows, err := def.Handler(ctx, args)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", err, ctxErr)
		}
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("tool execution failed")
		result.Error = toolError(err)
		return result
	}
	if rows == nil {
		rows = []map[string]any{}
	}

	result.Rows = rows
	result.Entities = extractEntities(def.Entities, rows)
	logger.Debug().
		Int("rows", len(rows)).
		Int("entities", len(result.Entities)).
		Dur("duration", time.Since(start)).
		Msg("tool executed")
	return result
}

func toolError(err error) *contractx.ToolError {
	kind := contractx.ErrorKind(err)
	if errors.Is(err, context.DeadlineExceeded) {
		kind = "timeout"
	}
	return &contractx.ToolError{
		Kind:    kind,
		Message: err.Error(),
	}
}

func extractEntities(keys EntityKeys, rows []map[string]any) []contractx.Entity {
	if keys.ID == "" && keys.Name == "" {
		return nil
	}
	out := make([]contractx.Entity, 0, len(rows))
	for _, row := range rows {
		e := contractx.Entity{
			ID:   stringValue(row[keys.ID]),
			Name: stringValue(row[keys.Name]),
		}
		if e.ID == "" && e.Name == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case []byte:
		return strings.TrimSpace(string(s))
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func (t ParamType) valid() bool {
	switch t {
	case String, Integer, Number, Boolean:
		return true
	default:
		return false
	}
}

func (t ParamType) dataType() schema.DataType {
	switch t {
	case Integer:
		return schema.Integer
	case Number:
		return schema.Number
	case Boolean:
		return schema.Boolean
	default:
		return schema.String
	}
}
