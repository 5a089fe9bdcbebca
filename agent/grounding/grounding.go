// Package grounding keeps recommendation entries tied to entities that a tool
// call actually returned in the same exchange.
package grounding

import (
	"errors"
	"strings"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

// Observed is the set of entities seen in one exchange's tool results.
type Observed struct {
	byID   map[string]contractx.Entity
	byName map[string]contractx.Entity
}

func Observe(results []contractx.ToolResult) *Observed {
	o := &Observed{
		byID:   make(map[string]contractx.Entity),
		byName: make(map[string]contractx.Entity),
	}
	for _, res := range results {
		if res.Error != nil {
			continue
		}
		for _, e := range res.Entities {
			o.Add(e)
		}
	}
	return o
}

func (o *Observed) Add(e contractx.Entity) {
	id := strings.TrimSpace(e.ID)
	name := foldName(e.Name)
	if id != "" {
		if prev, ok := o.byID[id]; !ok || prev.Name == "" {
			o.byID[id] = e
		}
	}
	if name != "" {
		if _, ok := o.byName[name]; !ok {
			o.byName[name] = e
		}
	}
}

func (o *Observed) Len() int {
	if o == nil {
		return 0
	}
	return len(o.byID) + len(o.byName)
}

// Lookup finds the observed entity an entry refers to, by id first and then
// by case-insensitive name.
func (o *Observed) Lookup(entry contractx.RecommendationEntry) (contractx.Entity, bool) {
	if o == nil {
		return contractx.Entity{}, false
	}
	if id := strings.TrimSpace(entry.EntityID); id != "" {
		if e, ok := o.byID[id]; ok {
			return e, true
		}
	}
	for _, name := range []string{entry.RestaurantName, entry.ItemName} {
		if e, ok := o.byName[foldName(name)]; ok && foldName(name) != "" {
			return e, true
		}
	}
	return contractx.Entity{}, false
}

// Check reports every non-placeholder entry that references an unobserved
// entity. The returned error matches contract.ErrUngroundedReference.
func Check(result contractx.RecommendationResult, observed *Observed) error {
	var errs []error
	for _, entry := range result.Recommendations {
		if entry.Placeholder {
			continue
		}
		if _, ok := observed.Lookup(entry); !ok {
			errs = append(errs, ungrounded(entry))
		}
	}
	return errors.Join(errs...)
}

// Filter drops placeholder and ungrounded entries and rewrites the survivors
// to the observed entity's id and name.
func Filter(result contractx.RecommendationResult, observed *Observed) (contractx.RecommendationResult, []error) {
	out := result
	out.Recommendations = make([]contractx.RecommendationEntry, 0, len(result.Recommendations))

	var dropped []error
	for _, entry := range result.Recommendations {
		if entry.Placeholder {
			continue
		}
		e, ok := observed.Lookup(entry)
		if !ok {
			dropped = append(dropped, ungrounded(entry))
			continue
		}
		if e.ID != "" {
			entry.EntityID = e.ID
		}
		if e.Name != "" {
			entry.RestaurantName = e.Name
		}
		out.Recommendations = append(out.Recommendations, entry)
	}
	return out, dropped
}

func ungrounded(entry contractx.RecommendationEntry) *contractx.UngroundedReferenceError {
	return &contractx.UngroundedReferenceError{
		EntityID: entry.EntityID,
		Name:     entry.DisplayName(),
	}
}

func foldName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
