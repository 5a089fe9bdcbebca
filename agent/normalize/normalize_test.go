package normalize

import (
	"context"
	"testing"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

func assertRecommendationShape(t *testing.T, result contractx.RecommendationResult, count int) {
	t.Helper()

	if len(result.Recommendations) != count {
		t.Fatalf("expected %d recommendations, got %d", count, len(result.Recommendations))
	}
	if result.FollowUpQuestion == "" {
		t.Fatal("follow-up question must not be empty")
	}
	for i, entry := range result.Recommendations {
		if entry.DisplayName() == "" {
			t.Fatalf("recommendations[%d] has no name: %+v", i, entry)
		}
	}
}

func TestRecommendationsCanonical(t *testing.T) {
	t.Parallel()

	n := New(Config{})
	raw := `{
		"text": "Here are some pizza places.",
		"recommendations": [
			{"restaurant_id": 11, "restaurant_name": "Luigi's", "cuisine": "Italian", "recommended_items": ["Margherita", {"name": "Calzone"}], "reason": "Classic"},
			{"restaurant_name": "Slice", "cuisine": "Pizza"}
		],
		"follow_up_question": "Thin or deep dish?"
	}`

	report := n.Recommendations(context.Background(), raw)
	if report.Mode != ParseModeStrict || report.Shape != ShapeCanonical {
		t.Fatalf("mode=%s shape=%s", report.Mode, report.Shape)
	}
	result := report.Result
	assertRecommendationShape(t, result, DefaultCount)

	if result.Summary != "Here are some pizza places." {
		t.Fatalf("summary = %q", result.Summary)
	}
	if result.FollowUpQuestion != "Thin or deep dish?" {
		t.Fatalf("follow up = %q", result.FollowUpQuestion)
	}

	first := result.Recommendations[0]
	if first.EntityID != "11" || first.RestaurantName != "Luigi's" || first.Category != "Italian" || first.Reason != "Classic" {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if len(first.RecommendedItems) != 2 || first.RecommendedItems[1] != "Calzone" {
		t.Fatalf("unexpected items: %v", first.RecommendedItems)
	}
	if result.Recommendations[1].Placeholder {
		t.Fatal("second entry is real")
	}
	if !result.Recommendations[2].Placeholder {
		t.Fatal("third entry should be a placeholder")
	}
}

func TestRecommendationsShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		shape Shape
		first string
		real  int
	}{
		{
			name:  "bare list",
			raw:   `[{"name":"A","image":"a.jpg"},{"name":"B"}]`,
			shape: ShapeList,
			first: "A",
			real:  2,
		},
		{
			name:  "options array",
			raw:   `{"options":[{"item_name":"Pad Thai","item_img_url":"p.jpg","item_cuisine":"Thai"}]}`,
			shape: ShapeOptions,
			first: "Pad Thai",
			real:  1,
		},
		{
			name:  "food field",
			raw:   `{"category":"food","food":[{"name":"Ramen"},{"name":"Udon"},{"name":"Soba"},{"name":"Extra"}]}`,
			shape: ShapeArrayField,
			first: "Ramen",
			real:  3,
		},
		{
			name:  "keyed map",
			raw:   `{"first":{"cuisine":"Thai"},"second":{"name":"Taco Stand","type":"Mexican"},"note":"x"}`,
			shape: ShapeKeyedMap,
			first: "first",
			real:  2,
		},
		{
			name:  "metadata object is not an entry",
			raw:   `{"text":"Here you go","meta":{"model":"x","tokens":12}}`,
			shape: ShapeCanonical,
			first: "Default Option 1",
			real:  0,
		},
		{
			name:  "keyed map skips metadata",
			raw:   `{"meta":{"model":"x"},"Pad Thai":{"cuisine":"Thai"}}`,
			shape: ShapeKeyedMap,
			first: "Pad Thai",
			real:  1,
		},
		{
			name:  "canonical wins over options",
			raw:   `{"options":[{"name":"O"}],"recommendations":[{"restaurant_name":"R"}]}`,
			shape: ShapeCanonical,
			first: "R",
			real:  1,
		},
	}

	n := New(Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report := n.Recommendations(context.Background(), tt.raw)
			if report.Shape != tt.shape {
				t.Fatalf("shape = %s, want %s", report.Shape, tt.shape)
			}
			assertRecommendationShape(t, report.Result, DefaultCount)
			if got := report.Result.Recommendations[0].DisplayName(); got != tt.first {
				t.Fatalf("first name = %q, want %q", got, tt.first)
			}

			real := 0
			for _, entry := range report.Result.Recommendations {
				if !entry.Placeholder {
					real++
				}
			}
			if real != tt.real {
				t.Fatalf("real entries = %d, want %d", real, tt.real)
			}
		})
	}
}

func TestRecommendationsFallback(t *testing.T) {
	t.Parallel()

	n := New(Config{Count: 2, PlaceholderLabel: "Nothing yet"})
	report := n.Recommendations(context.Background(), "Try the noodle bar downtown.")
	if report.Mode != ParseModeFallback || report.Shape != ShapeNone {
		t.Fatalf("mode=%s shape=%s", report.Mode, report.Shape)
	}

	result := report.Result
	assertRecommendationShape(t, result, 2)
	if result.Summary != "Try the noodle bar downtown." {
		t.Fatalf("summary = %q", result.Summary)
	}
	if result.FollowUpQuestion != DefaultFollowUpQuestion {
		t.Fatalf("follow up = %q", result.FollowUpQuestion)
	}
	for i, entry := range result.Recommendations {
		if !entry.Placeholder {
			t.Fatalf("recommendations[%d] should be a placeholder", i)
		}
		if entry.EntityID != "" || entry.ImageURL != "" || entry.Category != "" {
			t.Fatalf("placeholder carries data: %+v", entry)
		}
	}
	if result.Recommendations[1].RestaurantName != "Nothing yet 2" {
		t.Fatalf("placeholder label = %q", result.Recommendations[1].RestaurantName)
	}
}

func TestRecommendationsScalarJSONFallsBack(t *testing.T) {
	t.Parallel()

	report := New(Config{}).Recommendations(context.Background(), "42")
	if report.Mode != ParseModeFallback {
		t.Fatalf("mode = %s, want %s", report.Mode, ParseModeFallback)
	}
	assertRecommendationShape(t, report.Result, DefaultCount)
}

func TestOptionsFencedPadsToThree(t *testing.T) {
	t.Parallel()

	raw := "Sure! ```json\n{\"options\":[" +
		"{\"item_name\":\"Green Curry\",\"item_img_url\":\"https://img.example/curry.jpg\",\"item_cuisine\":\"Thai\"}," +
		"{\"name\":\"Tom Yum\",\"image\":\"https://img.example/tomyum.jpg\",\"cuisine\":\"Thai\"}" +
		"]}\n```"

	report := New(Config{}).Options(context.Background(), raw)
	if report.Mode != ParseModeStrict || report.Shape != ShapeOptions {
		t.Fatalf("mode=%s shape=%s", report.Mode, report.Shape)
	}

	result := report.Result
	if result.Category != OptionsCategory {
		t.Fatalf("category = %q", result.Category)
	}
	if len(result.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(result.Options))
	}
	if result.Options[1].ItemName != "Tom Yum" || result.Options[1].ItemImgURL != "https://img.example/tomyum.jpg" || result.Options[1].ItemCuisine != "Thai" {
		t.Fatalf("unexpected second option: %+v", result.Options[1])
	}
	pad := result.Options[2]
	if !pad.Placeholder || pad.ItemName != "Default Option 3" || pad.ItemImgURL != "" || pad.ItemCuisine != "" {
		t.Fatalf("unexpected padding option: %+v", pad)
	}
}

func TestRecommendationsFenceInsideStringValue(t *testing.T) {
	t.Parallel()

	raw := `{"text":"see ` + "```42```" + `","recommendations":[{"restaurant_name":"Joe's Pizza","reason":"quote ` + "```{}```" + `"}],"follow_up_question":"Crust?"}`

	report := New(Config{}).Recommendations(context.Background(), raw)
	if report.Mode != ParseModeStrict || report.Shape != ShapeCanonical {
		t.Fatalf("mode=%s shape=%s", report.Mode, report.Shape)
	}
	first := report.Result.Recommendations[0]
	if first.Placeholder || first.RestaurantName != "Joe's Pizza" {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if report.Result.Summary != "see ```42```" || report.Result.FollowUpQuestion != "Crust?" {
		t.Fatalf("unexpected result: %+v", report.Result)
	}
}

func TestOptionsIgnoresMetadataObject(t *testing.T) {
	t.Parallel()

	report := New(Config{}).Options(context.Background(), `{"text":"ideas","meta":{"model":"x"}}`)
	for _, opt := range report.Result.Options {
		if opt.ItemName == "meta" {
			t.Fatalf("metadata object returned as a dish: %+v", report.Result.Options)
		}
		if !opt.Placeholder {
			t.Fatalf("expected only placeholders, got %+v", opt)
		}
	}
	if len(report.Result.Options) != DefaultCount {
		t.Fatalf("expected %d options, got %d", DefaultCount, len(report.Result.Options))
	}
}

func TestOptionsFallback(t *testing.T) {
	t.Parallel()

	report := New(Config{}).Options(context.Background(), "no idea")
	if report.Mode != ParseModeFallback {
		t.Fatalf("mode = %s", report.Mode)
	}
	if report.Result.Category != OptionsCategory || len(report.Result.Options) != DefaultCount {
		t.Fatalf("unexpected fallback: %+v", report.Result)
	}
}
