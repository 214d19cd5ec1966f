// Package airtable maps Airtable metadata records to canonical items.
package airtable

import (
	"github.com/custodia-labs/weave/internal/core/domain"
)

// Item types produced by this normaliser. Airtable base and table ids
// live in one id-space, so canonical ids carry the type as a suffix.
const (
	TypeBase  = "Base"
	TypeTable = "Table"
)

// Record is the identity subset of an Airtable metadata record, shared
// by bases and tables.
type Record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Base normalises one base record.
func Base(rec Record) domain.Item {
	return domain.Item{
		ID:      rec.ID + "_" + TypeBase,
		Type:    TypeBase,
		Name:    rec.Name,
		Visible: true,
	}
}

// Table normalises one table record under its base. The parent id is
// the base's canonical id, so tables link to the Base item, not the
// raw provider id.
func Table(rec Record, base Record) domain.Item {
	parentID := base.ID + "_" + TypeBase
	parentName := base.Name
	return domain.Item{
		ID:         rec.ID + "_" + TypeTable,
		Type:       TypeTable,
		Name:       rec.Name,
		ParentID:   &parentID,
		ParentName: &parentName,
		Visible:    true,
	}
}
