// Package notion maps Notion search results to canonical items.
//
// Notion records carry no flat name field: a page's title hides inside
// its property map as a rich-text fragment with a "content" key, at a
// position that varies with the property schema. The normaliser finds
// it with a bounded depth-first search over the raw record.
package notion

import (
	"time"

	"github.com/custodia-labs/weave/internal/core/domain"
)

// titleKey is the rich-text fragment key that holds display text.
const titleKey = "content"

// fallbackName labels records whose property tree holds no text at all.
const fallbackName = "multi_select"

// maxSearchDepth bounds the title search. Search results come from the
// provider and can nest arbitrarily; the traversal must not be able to
// exhaust the stack.
const maxSearchDepth = 32

// Item normalises one raw search result. The record is the decoded
// JSON object as returned by the Notion search endpoint.
func Item(record map[string]any) domain.Item {
	object, _ := record["object"].(string)
	rawID, _ := record["id"].(string)

	name := title(record)

	var parentID *string
	if parent, ok := record["parent"].(map[string]any); ok {
		if parentType, ok := parent["type"].(string); ok && parentType != "workspace" {
			if id, ok := parent[parentType].(string); ok {
				parentID = &id
			}
		}
	}

	visible := true
	if archived, ok := record["archived"].(bool); ok {
		visible = !archived
	}

	return domain.Item{
		ID:         rawID + "_" + object,
		Type:       object,
		Name:       name,
		ParentID:   parentID,
		CreatedAt:  parseTime(record, "created_time"),
		ModifiedAt: parseTime(record, "last_edited_time"),
		Visible:    visible,
	}
}

// title resolves the display name: first from the property map, then
// from the whole record, then the fixed fallback. The result is always
// prefixed with the record's object tag so pages and databases with
// the same title stay distinguishable.
func title(record map[string]any) string {
	object, _ := record["object"].(string)

	name, ok := "", false
	if properties, isMap := record["properties"].(map[string]any); isMap {
		name, ok = searchKey(properties, 0)
	}
	if !ok {
		name, ok = searchKey(record, 0)
	}
	if !ok {
		name = fallbackName
	}
	return object + " " + name
}

// searchKey walks nested maps and slices depth-first looking for the
// title key holding a string. Map iteration order is randomised in Go,
// so when siblings both match, the direct hit at the current level is
// checked before descending to keep the result deterministic; matches
// deeper in distinct siblings are genuinely schema-ambiguous and the
// provider does not produce them.
func searchKey(value any, depth int) (string, bool) {
	if depth > maxSearchDepth {
		return "", false
	}
	switch v := value.(type) {
	case map[string]any:
		if s, ok := v[titleKey].(string); ok {
			return s, true
		}
		for _, child := range v {
			if s, ok := searchKey(child, depth+1); ok {
				return s, true
			}
		}
	case []any:
		for _, child := range v {
			if s, ok := searchKey(child, depth+1); ok {
				return s, true
			}
		}
	}
	return "", false
}

func parseTime(record map[string]any, key string) *time.Time {
	s, ok := record[key].(string)
	if !ok {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
