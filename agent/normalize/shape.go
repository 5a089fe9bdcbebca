package normalize

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Shape names the layout rule that located entries in parsed agent output.
type Shape string

const (
	ShapeCanonical  Shape = "recommendations"
	ShapeList       Shape = "list"
	ShapeOptions    Shape = "options"
	ShapeArrayField Shape = "array_field"
	ShapeKeyedMap   Shape = "keyed_map"
	ShapeNone       Shape = "none"
)

var (
	idAliases         = []string{"restaurant_id", "entity_id", "id"}
	restaurantAliases = []string{"restaurant_name", "restaurant", "name", "title"}
	itemAliases       = []string{"item_name", "dish", "item"}
	imageAliases      = []string{"image_url", "item_img_url", "image", "img", "url"}
	categoryAliases   = []string{"cuisine", "item_cuisine", "category", "type"}
	itemsAliases      = []string{"recommended_items", "items", "dishes"}
	listNameAliases   = []string{"item_name", "name", "dish", "title"}
	reasonAliases     = []string{"reason", "justification", "why", "description"}
	summaryAliases    = []string{"text", "summary", "response", "message"}
	followUpAliases   = []string{"follow_up_question", "follow_up", "followup_question", "question"}
)

type candidate struct {
	id         string
	restaurant string
	item       string
	category   string
	image      string
	reason     string
	items      []string
}

func (c candidate) name() string {
	if c.restaurant != "" {
		return c.restaurant
	}
	return c.item
}

type keyed struct {
	key   string
	value gjson.Result
}

// locate applies the shape rules in priority order: canonical
// recommendations array, bare list, options array, first array-of-objects
// field, then object-valued fields of a keyed map.
func locate(root gjson.Result) (Shape, []keyed) {
	if root.IsArray() {
		return ShapeList, elements(root)
	}
	if !root.IsObject() {
		return ShapeNone, nil
	}

	if recs := root.Get("recommendations"); recs.IsArray() {
		return ShapeCanonical, elements(recs)
	}
	if opts := root.Get("options"); opts.IsArray() {
		return ShapeOptions, elements(opts)
	}

	var field []keyed
	root.ForEach(func(_, value gjson.Result) bool {
		if value.IsArray() && hasObject(value) {
			field = elements(value)
			return false
		}
		return true
	})
	if field != nil {
		return ShapeArrayField, field
	}

	var objects []keyed
	root.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() {
			objects = append(objects, keyed{key: key.String(), value: value})
		}
		return true
	})
	if fields := entryObjects(objects); len(fields) > 0 {
		return ShapeKeyedMap, fields
	}

	if firstString(root, summaryAliases...) != "" {
		return ShapeCanonical, nil
	}
	return ShapeNone, nil
}

// entryObjects keeps the object-valued fields that look like entries: they
// carry a name or id, or at least one entry attribute so the key can serve
// as the name.
func entryObjects(objects []keyed) []keyed {
	out := make([]keyed, 0, len(objects))
	for _, obj := range objects {
		if hasEntryField(obj.value) {
			out = append(out, obj)
		}
	}
	return out
}

var entryFieldAliases = [][]string{
	idAliases, restaurantAliases, itemAliases, listNameAliases,
	categoryAliases, imageAliases, reasonAliases,
}

func hasEntryField(v gjson.Result) bool {
	for _, aliases := range entryFieldAliases {
		if firstString(v, aliases...) != "" {
			return true
		}
	}
	return len(firstList(v, itemsAliases...)) > 0
}

func elements(arr gjson.Result) []keyed {
	out := make([]keyed, 0)
	arr.ForEach(func(_, value gjson.Result) bool {
		out = append(out, keyed{value: value})
		return true
	})
	return out
}

func hasObject(arr gjson.Result) bool {
	found := false
	arr.ForEach(func(_, value gjson.Result) bool {
		found = value.IsObject()
		return !found
	})
	return found
}

func readCandidates(items []keyed) []candidate {
	out := make([]candidate, 0, len(items))
	for _, it := range items {
		if c, ok := readCandidate(it.key, it.value); ok {
			out = append(out, c)
		}
	}
	return out
}

func readCandidate(key string, v gjson.Result) (candidate, bool) {
	if v.Type == gjson.String {
		name := strings.TrimSpace(v.String())
		return candidate{restaurant: name}, name != ""
	}
	if !v.IsObject() {
		return candidate{}, false
	}

	c := candidate{
		id:         firstString(v, idAliases...),
		restaurant: firstString(v, restaurantAliases...),
		item:       firstString(v, itemAliases...),
		category:   firstString(v, categoryAliases...),
		image:      firstString(v, imageAliases...),
		reason:     firstString(v, reasonAliases...),
		items:      firstList(v, itemsAliases...),
	}
	if c.name() == "" {
		c.restaurant = strings.TrimSpace(key)
	}
	if c.name() == "" && c.id == "" {
		return candidate{}, false
	}
	return c, true
}

func firstString(v gjson.Result, aliases ...string) string {
	for _, alias := range aliases {
		r := v.Get(alias)
		if r.Type != gjson.String && r.Type != gjson.Number {
			continue
		}
		if s := strings.TrimSpace(r.String()); s != "" {
			return s
		}
	}
	return ""
}

func firstList(v gjson.Result, aliases ...string) []string {
	for _, alias := range aliases {
		r := v.Get(alias)
		if !r.IsArray() {
			continue
		}
		var out []string
		r.ForEach(func(_, el gjson.Result) bool {
			var s string
			if el.IsObject() {
				s = firstString(el, listNameAliases...)
			} else {
				s = strings.TrimSpace(el.String())
			}
			if s != "" {
				out = append(out, s)
			}
			return true
		})
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
