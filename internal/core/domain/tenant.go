package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Tenant is the (organization, user) pair that scopes credentials,
// the knowledge index, and conversation memory.
type Tenant struct {
	// OrgID is the organization identifier.
	OrgID string
	// UserID is the user identifier within the organization.
	UserID string
}

// IsValid returns true if both identifiers are present.
func (t Tenant) IsValid() bool {
	return t.OrgID != "" && t.UserID != ""
}

// Validate rejects missing or path-unsafe identifiers. Tenant ids
// become on-disk directory names, so separators and traversal
// sequences must not reach the filesystem.
func (t Tenant) Validate() error {
	if !t.IsValid() {
		return fmt.Errorf("%w: org_id and user_id are required", ErrInvalidInput)
	}
	for _, id := range []string{t.OrgID, t.UserID} {
		if strings.ContainsAny(id, `/\`) || id == "." || id == ".." || id != filepath.Base(id) {
			return fmt.Errorf("%w: invalid tenant id %q", ErrInvalidInput, id)
		}
	}
	return nil
}
