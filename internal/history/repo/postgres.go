package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/operadash/betting-ops-core/internal/game"
	"github.com/operadash/betting-ops-core/internal/stats"
)

// Orders lê pedidos de aposta do Postgres da plataforma.
// A escrita pertence ao backend de trading; aqui é somente leitura.
type Orders struct {
	DB *sql.DB
}

func NewOrders(db *sql.DB) *Orders { return &Orders{DB: db} }

// HistoryFilter são os critérios da listagem paginada de histórico.
// Campos vazios não filtram; Page começa em 1.
type HistoryFilter struct {
	CustomerID  string
	Family      game.GameFamily
	PlayStyle   game.SelectionKind
	State       game.OrderState
	IssueNumber string
	Page        int
	Limit       int
}

const orderColumns = `id, customer_id, game_family, issue_number, selection,
	amount_cents, fee_cents, win_amount_cents, state, created_at, result`

// List retorna a página pedida (mais recentes primeiro) e o total do filtro.
func (r *Orders) List(ctx context.Context, f HistoryFilter) ([]game.Order, int, error) {
	where, args := buildWhere(f)

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	q := `SELECT ` + orderColumns + ` FROM orders` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListSettledAsc retorna todo o histórico liquidado de um escopo em ordem
// cronológica ascendente (created_at, id) — a ordem que o fold exige.
func (r *Orders) ListSettledAsc(ctx context.Context, customerID string, f stats.Filter) ([]game.Order, error) {
	where, args := buildWhere(HistoryFilter{
		CustomerID: customerID,
		Family:     f.Family,
		PlayStyle:  f.PlayStyle,
	})
	where += ` AND state <> '` + string(game.StateWaiting) + `'`

	q := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list settled orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// buildWhere monta a cláusula WHERE posicional a partir do filtro.
// CustomerID é sempre o primeiro critério.
func buildWhere(f HistoryFilter) (string, []any) {
	conds := []string{"customer_id = $1"}
	args := []any{f.CustomerID}

	if f.Family != "" {
		args = append(args, string(f.Family))
		conds = append(conds, "game_family = $"+strconv.Itoa(len(args)))
	}
	if f.PlayStyle != "" {
		args = append(args, string(f.PlayStyle))
		conds = append(conds, "selection->>'kind' = $"+strconv.Itoa(len(args)))
	}
	if f.State != "" {
		args = append(args, string(f.State))
		conds = append(conds, "state = $"+strconv.Itoa(len(args)))
	}
	if f.IssueNumber != "" {
		args = append(args, f.IssueNumber)
		conds = append(conds, "issue_number = $"+strconv.Itoa(len(args)))
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanOrders(rows *sql.Rows) ([]game.Order, error) {
	var out []game.Order
	for rows.Next() {
		var (
			o         game.Order
			selection []byte
			result    []byte
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.GameFamily, &o.IssueNumber, &selection,
			&o.AmountCents, &o.FeeCents, &o.WinAmountCents, &o.State, &o.CreatedAt, &result); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(selection, &o.Selection); err != nil {
			return nil, fmt.Errorf("order %s selection: %w", o.ID, err)
		}
		if len(result) > 0 {
			var dr game.DrawResult
			if err := json.Unmarshal(result, &dr); err != nil {
				return nil, fmt.Errorf("order %s result: %w", o.ID, err)
			}
			o.Result = &dr
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
