package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/ledger"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/service"
)

// ClientHandler handles HTTP requests for client endpoints.
type ClientHandler struct {
	clientSvc *service.ClientService
	ledger    *ledger.Ledger
}

// NewClientHandler creates a new ClientHandler. Deletion goes through
// the ledger, which knows whether the client still owns portfolios.
func NewClientHandler(clientSvc *service.ClientService, l *ledger.Ledger) *ClientHandler {
	return &ClientHandler{clientSvc: clientSvc, ledger: l}
}

// registerClientRequest is the JSON request body for POST /clients.
type registerClientRequest struct {
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Email string `json:"email"`
}

// updateClientRequest is the JSON request body for PUT /clients/{client_id}.
type updateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// clientResponse is the JSON representation of a client profile.
type clientResponse struct {
	ClientID  string `json:"client_id"`
	Name      string `json:"name"`
	CPF       string `json:"cpf"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// clientListResponse is the JSON response for GET /clients.
type clientListResponse struct {
	Clients []clientResponse `json:"clients"`
	Total   int              `json:"total"`
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ClientID:  c.ID,
		Name:      c.Name,
		CPF:       c.CPF,
		Email:     c.Email,
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}

// Register handles POST /clients.
func (h *ClientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerClientRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	client, err := h.clientSvc.Register(r.Context(), service.RegisterClientRequest{
		Name:  req.Name,
		CPF:   req.CPF,
		Email: req.Email,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toClientResponse(client))
}

// List handles GET /clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientSvc.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]clientResponse, len(clients))
	for i, c := range clients {
		resp[i] = toClientResponse(c)
	}
	WriteJSON(w, http.StatusOK, clientListResponse{Clients: resp, Total: len(resp)})
}

// Get handles GET /clients/{client_id}.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, err := h.clientSvc.Get(r.Context(), chi.URLParam(r, "client_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toClientResponse(client))
}

// Update handles PUT /clients/{client_id}.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateClientRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	client, err := h.clientSvc.UpdateProfile(r.Context(), chi.URLParam(r, "client_id"), service.UpdateClientRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toClientResponse(client))
}

// Delete handles DELETE /clients/{client_id}.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteClient(r.Context(), chi.URLParam(r, "client_id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
