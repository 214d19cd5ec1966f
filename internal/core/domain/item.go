package domain

import "time"

// Item is the provider-agnostic representation of one remote record
// after normalisation. It is an immutable value: normalisers construct
// it once and nothing mutates it afterwards.
//
// ID must be unique within a provider's item graph. Where a provider's
// id-space is shared across record types (Airtable bases and tables),
// normalisers suffix the raw id with the item type.
type Item struct {
	// ID is the unique identifier within the provider's item graph.
	ID string `json:"id"`
	// Type is the provider record type (e.g. "Base", "Table", "page").
	Type string `json:"type"`
	// Name is the human-readable label.
	Name string `json:"name"`
	// ParentID links to a parent item for hierarchical providers.
	ParentID *string `json:"parent_id,omitempty"`
	// ParentName is the parent's label, when known.
	ParentName *string `json:"parent_name,omitempty"`
	// CreatedAt is the provider-reported creation time, when known.
	CreatedAt *time.Time `json:"created_at,omitempty"`
	// ModifiedAt is the provider-reported last-modified time, when known.
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
	// Visible is false when the provider marks the record archived.
	Visible bool `json:"visible"`
}
