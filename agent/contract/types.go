package contract

type AgentType string

const (
	AgentTypeTools   AgentType = "tools"
	AgentTypeFinal   AgentType = "final"
	AgentTypeOptions AgentType = "options"
)

// RecommendationRequest is the minimal context a caller hands to the orchestrator.
type RecommendationRequest struct {
	UserID           string   `json:"user_id"`
	Query            string   `json:"query"`
	OrderCount       int      `json:"order_count"`
	FavoriteCuisines []string `json:"favorite_cuisines,omitempty"`
}

type RecommendationResult struct {
	Summary          string                `json:"text"`
	Recommendations  []RecommendationEntry `json:"recommendations"`
	FollowUpQuestion string                `json:"follow_up_question"`
}

type RecommendationEntry struct {
	EntityID         string   `json:"restaurant_id,omitempty"`
	RestaurantName   string   `json:"restaurant_name"`
	ItemName         string   `json:"item_name,omitempty"`
	Category         string   `json:"cuisine,omitempty"`
	ImageURL         string   `json:"image_url,omitempty"`
	RecommendedItems []string `json:"recommended_items,omitempty"`
	Reason           string   `json:"reason,omitempty"`
	Placeholder      bool     `json:"placeholder,omitempty"`
}

// DisplayName is the entity name an entry refers to.
func (e RecommendationEntry) DisplayName() string {
	if e.RestaurantName != "" {
		return e.RestaurantName
	}
	return e.ItemName
}

type OptionsRequest struct {
	UserID    string `json:"user_id,omitempty"`
	InputText string `json:"input_text"`
}

type OptionsResult struct {
	Category string       `json:"category"`
	Options  []FoodOption `json:"options"`
}

type FoodOption struct {
	ItemName    string `json:"item_name"`
	ItemImgURL  string `json:"item_img_url"`
	ItemCuisine string `json:"item_cuisine"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

type ToolCall struct {
	ID   string         `json:"id"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	CallID   string           `json:"call_id"`
	Tool     string           `json:"tool"`
	Rows     []map[string]any `json:"rows,omitempty"`
	Error    *ToolError       `json:"error,omitempty"`
	Entities []Entity         `json:"-"`
}

// ToolError is the structured error payload the agent sees for a failed call.
type ToolError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Entity is a catalog entity observed in a tool result.
type Entity struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Payload is what gets serialized into the tool message of the transcript.
func (r ToolResult) Payload() map[string]any {
	if r.Error != nil {
		return map[string]any{
			"tool":  r.Tool,
			"error": r.Error,
		}
	}
	rows := r.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	return map[string]any{
		"tool":      r.Tool,
		"rows":      rows,
		"row_count": len(rows),
	}
}
