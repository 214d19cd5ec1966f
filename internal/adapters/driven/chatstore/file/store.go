// Package file persists conversation history as per-session JSON
// files alongside the tenant's knowledge index.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ChatStore = (*Store)(nil)

// Store reads and writes session files under the data directory.
type Store struct {
	root string
}

// NewStore creates a chat store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{root: dataDir}
}

// sessionFile is the on-disk layout.
type sessionFile struct {
	Turns []domain.Turn `json:"turns"`
}

// Load returns the persisted turns for a session, or an empty slice
// when the session has no history yet.
func (s *Store) Load(_ context.Context, tenant domain.Tenant, sessionID string) ([]domain.Turn, error) {
	path, err := s.path(tenant, sessionID)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var file sessionFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", path, err)
	}
	return file.Turns, nil
}

// Save persists the full turn list, replacing any previous history.
// The write goes through a temp file and atomic rename.
func (s *Store) Save(_ context.Context, tenant domain.Tenant, sessionID string, turns []domain.Turn) error {
	path, err := s.path(tenant, sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	raw, err := json.MarshalIndent(sessionFile{Turns: turns}, "", "  ")
	if err != nil {
		return fmt.Errorf("serialise session: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// path builds the session file path. Tenant and session ids become
// directory and file names, so separators are rejected rather than
// silently escaping the data directory.
func (s *Store) path(tenant domain.Tenant, sessionID string) (string, error) {
	if err := tenant.Validate(); err != nil {
		return "", err
	}
	if sessionID == "" {
		return "", fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(sessionID, `/\`) || sessionID != filepath.Base(sessionID) {
		return "", fmt.Errorf("%w: invalid session id %q", domain.ErrInvalidInput, sessionID)
	}
	return filepath.Join(s.root, "rag",
		"org_"+tenant.OrgID, "user_"+tenant.UserID,
		"chat_session_"+sessionID+".json"), nil
}
