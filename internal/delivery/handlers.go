package delivery

import (
	"net/http"
	"strconv"

	"github.com/Vovarama1992/gpt_buddy/internal/dialog"
	"github.com/Vovarama1992/gpt_buddy/internal/ledger"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

type Handler struct {
	store  dialog.Store
	ledger ledger.Service
	auth   *AuthService
}

func NewHandler(store dialog.Store, ldg ledger.Service, auth *AuthService) *Handler {
	return &Handler{store: store, ledger: ldg, auth: auth}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	token, err := h.auth.Login(in.Password)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetUsers — все пользователи, видевшие бота.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		http.Error(w, "storage error", http.StatusBadGateway)
		return
	}
	if users == nil {
		users = []dialog.UserInfo{}
	}

	writeJSON(w, http.StatusOK, users)
}

// GetHistory — активный диалог юзера, обмены в хронологическом порядке.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	tgID, err := strconv.ParseInt(chi.URLParam(r, "telegram_id"), 10, 64)
	if err != nil {
		http.Error(w, "bad telegram_id", http.StatusBadRequest)
		return
	}

	msgs, err := h.store.GetActiveMessages(r.Context(), tgID)
	if err != nil {
		http.Error(w, "storage error", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}

// GetUsage — расшифровка расходов юзера.
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	tgID, err := strconv.ParseInt(chi.URLParam(r, "telegram_id"), 10, 64)
	if err != nil {
		http.Error(w, "bad telegram_id", http.StatusBadRequest)
		return
	}

	est, err := h.ledger.EstimateCost(r.Context(), tgID)
	if err != nil {
		http.Error(w, "estimate error", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total": est.Total,
		"lines": est.Lines,
	})
}
