// Package httpapi exposes the integration and chat services over HTTP.
//
// The surface mirrors what the frontend drives: per-connector
// authorize/callback/credentials/load routes under /integrations, and
// a form-encoded /chat route. Errors come back as {"detail": ...}
// JSON with a status mapped from the domain error.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driving"
	"github.com/custodia-labs/weave/internal/logger"
)

// closeWindowHTML is served after a completed OAuth callback so the
// provider popup closes itself.
const closeWindowHTML = `<html>
    <script>
        window.close();
    </script>
</html>
`

// Server routes HTTP requests to the driving services.
type Server struct {
	integrations driving.IntegrationService
	chat         driving.ChatService
}

// NewServer creates the HTTP server facade.
func NewServer(integrations driving.IntegrationService, chat driving.ChatService) *Server {
	return &Server{integrations: integrations, chat: chat}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"Ping": "Pong"})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"health": "ok"})
	})

	r.Route("/integrations/{connector}", func(r chi.Router) {
		r.Post("/authorize", s.handleAuthorize)
		r.Get("/oauth2callback", s.handleCallback)
		r.Post("/credentials", s.handleCredentials)
		r.Post("/load", s.handleLoad)
	})

	r.Post("/chat", s.handleChat)
	return r
}

// handleAuthorize starts the OAuth flow and returns the provider URL
// the frontend should open.
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	connector, tenant, ok := s.connectorAndTenant(w, r)
	if !ok {
		return
	}

	redirect, err := s.integrations.BeginAuthorization(r.Context(), connector, tenant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, redirect)
}

// handleCallback completes the OAuth flow from the provider redirect
// and serves a page that closes the popup.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	connector, err := domain.ParseConnectorType(chi.URLParam(r, "connector"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.integrations.HandleCallback(r.Context(), connector, r.URL.Query()); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(closeWindowHTML)); err != nil {
		logger.Warn("write callback response: %v", err)
	}
}

// handleCredentials hands exchanged credentials to the frontend.
func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	connector, tenant, ok := s.connectorAndTenant(w, r)
	if !ok {
		return
	}

	record, err := s.integrations.GetCredentials(r.Context(), connector, tenant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleLoad fetches and normalises provider items. Credentials come
// either inline in the "credentials" form field or, when absent, from
// the broker's stored record for the tenant.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	connector, tenant, ok := s.connectorAndTenant(w, r)
	if !ok {
		return
	}

	var creds *domain.CredentialRecord
	if raw := r.PostFormValue("credentials"); raw != "" {
		creds = &domain.CredentialRecord{}
		if err := json.Unmarshal([]byte(raw), creds); err != nil {
			writeError(w, domain.ErrInvalidInput)
			return
		}
	} else {
		var err error
		creds, err = s.integrations.GetCredentials(r.Context(), connector, tenant)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	items, err := s.integrations.FetchItems(r.Context(), connector, tenant, creds)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// chatResponse is the chat route payload.
type chatResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

// handleChat answers one conversational turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	tenant := domain.Tenant{
		OrgID:  r.PostFormValue("org_id"),
		UserID: r.PostFormValue("user_id"),
	}
	sessionID := r.PostFormValue("chat_session_id")
	message := r.PostFormValue("message")

	reply, err := s.chat.Chat(r.Context(), tenant, sessionID, message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Message: reply, Role: "ASSISTANT"})
}

// connectorAndTenant parses the URL connector and the form tenant,
// writing the error response itself on failure.
func (s *Server) connectorAndTenant(w http.ResponseWriter, r *http.Request) (domain.ConnectorType, domain.Tenant, bool) {
	connector, err := domain.ParseConnectorType(chi.URLParam(r, "connector"))
	if err != nil {
		writeError(w, err)
		return "", domain.Tenant{}, false
	}
	tenant := domain.Tenant{
		OrgID:  r.PostFormValue("org_id"),
		UserID: r.PostFormValue("user_id"),
	}
	return connector, tenant, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response: %v", err)
	}
}

// writeError maps domain errors onto HTTP statuses in FastAPI's
// {"detail": ...} shape, which the frontend already understands.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnsupportedType):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrStateMismatch),
		errors.Is(err, domain.ErrCredentialsNotFound),
		errors.Is(err, domain.ErrTokenExchange):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrLLMUnavailable):
		status = http.StatusServiceUnavailable
	default:
		if _, ok := domain.IsProviderError(err); ok {
			status = http.StatusBadGateway
		}
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
