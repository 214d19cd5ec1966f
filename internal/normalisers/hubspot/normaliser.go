// Package hubspot maps Hubspot CRM records to canonical items.
package hubspot

import (
	"strings"
	"time"

	"github.com/custodia-labs/weave/internal/core/domain"
)

// Item types produced by this normaliser. Hubspot object ids are plain
// integers shared across object types, so canonical ids carry the type
// as a suffix.
const (
	TypeContact = "Contact"
	TypeCompany = "Company"
)

// Company is the subset of a CRM company record the normaliser reads.
type Company struct {
	ID   string
	Name string
}

// Contact is the subset of a CRM contact record the normaliser reads.
type Contact struct {
	ID        string
	FirstName string
	LastName  string
	CreatedAt *time.Time
	UpdatedAt *time.Time
	Archived  bool
}

// Item normalises one contact in the context of its company. The
// contact's display name joins first and last name; a contact with
// neither keeps an empty name rather than inventing one.
func Item(contact Contact, company Company) domain.Item {
	parentID := company.ID + "_" + TypeCompany
	parentName := company.Name
	return domain.Item{
		ID:         contact.ID + "_" + TypeContact,
		Type:       TypeContact,
		Name:       strings.TrimSpace(contact.FirstName + " " + contact.LastName),
		ParentID:   &parentID,
		ParentName: &parentName,
		CreatedAt:  contact.CreatedAt,
		ModifiedAt: contact.UpdatedAt,
		Visible:    !contact.Archived,
	}
}
