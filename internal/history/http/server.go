package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/operadash/betting-ops-core/internal/game"
	"github.com/operadash/betting-ops-core/internal/history"
	"github.com/operadash/betting-ops-core/internal/history/repo"
	"github.com/operadash/betting-ops-core/internal/stats"
)

// API expõe os endpoints REST do histórico de apostas para o dashboard.
type API struct {
	Log *zap.Logger
	Svc *history.Service
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	// histórico decodificado paginado, snapshot do escopo e conferência
	// contra os pré-agregados da plataforma
	r.Get("/v1/customers/{id}/orders", a.getHistory)
	r.Get("/v1/customers/{id}/statistics", a.getStatistics)
	r.Get("/v1/customers/{id}/statistics/verify", a.getVerify)
	return r
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// requestID anexa um id de correlação a cada requisição.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// parseScope lê os parâmetros de escopo comuns (gameType, gamePlayStyle)
// validando contra a taxonomia da família quando ambos vêm informados.
func parseScope(r *http.Request) (stats.Filter, error) {
	var f stats.Filter
	if v := r.URL.Query().Get("gameType"); v != "" {
		switch game.GameFamily(v) {
		case game.FamilyWingo, game.FamilyTrxWingo, game.FamilyK3, game.Family5D:
			f.Family = game.GameFamily(v)
		default:
			return f, game.ErrUnknownVariant
		}
	}
	if v := r.URL.Query().Get("gamePlayStyle"); v != "" {
		f.PlayStyle = game.SelectionKind(v)
		if f.Family != "" {
			found := false
			for _, k := range game.Kinds(f.Family) {
				if k == f.PlayStyle {
					found = true
					break
				}
			}
			if !found {
				return f, game.ErrUnknownVariant
			}
		}
	}
	return f, nil
}

func (a *API) getHistory(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown gameType/gamePlayStyle"})
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	f := repo.HistoryFilter{
		CustomerID:  chi.URLParam(r, "id"),
		Family:      scope.Family,
		PlayStyle:   scope.PlayStyle,
		IssueNumber: q.Get("issueNumber"),
		Page:        page,
		Limit:       limit,
	}
	if v := q.Get("state"); v != "" {
		switch game.OrderState(v) {
		case game.StateWaiting, game.StateWinning, game.StateLosing:
			f.State = game.OrderState(v)
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown state"})
			return
		}
	}

	resp, err := a.Svc.History(r.Context(), f)
	if err != nil {
		a.Log.Error("history query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) getStatistics(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown gameType/gamePlayStyle"})
		return
	}

	snap, err := a.Svc.Statistics(r.Context(), chi.URLParam(r, "id"), scope)
	if err != nil {
		a.Log.Error("statistics query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) getVerify(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown gameType/gamePlayStyle"})
		return
	}

	resp, err := a.Svc.Verify(r.Context(), chi.URLParam(r, "id"), scope)
	if err != nil {
		a.Log.Error("statistics verify failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
