// Package history é a fachada de consulta do histórico de apostas:
// combina o repositório de pedidos, o decodificador, o classificador e o
// agregador de estatísticas atrás de uma API fina de leitura.
package history

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/operadash/betting-ops-core/internal/game"
	"github.com/operadash/betting-ops-core/internal/history/dto"
	"github.com/operadash/betting-ops-core/internal/history/repo"
	"github.com/operadash/betting-ops-core/internal/stats"
	"github.com/operadash/betting-ops-core/internal/stats/store"
)

// OrderSource abstrai a leitura de pedidos (Postgres em produção).
type OrderSource interface {
	List(ctx context.Context, f repo.HistoryFilter) ([]game.Order, int, error)
	ListSettledAsc(ctx context.Context, customerID string, f stats.Filter) ([]game.Order, error)
}

// SnapshotStore abstrai o store de snapshots comprometidos (Redis).
type SnapshotStore interface {
	Get(ctx context.Context, customerID string, f stats.Filter) (stats.Snapshot, error)
	Put(ctx context.Context, customerID string, f stats.Filter, snap stats.Snapshot) error
}

// StatisticsBackend abstrai o endpoint pré-agregado da plataforma.
type StatisticsBackend interface {
	GetBettingStatistics(ctx context.Context, customerID string, f stats.Filter) (stats.Statistics, error)
}

type Service struct {
	log      *zap.Logger
	orders   OrderSource
	snaps    SnapshotStore
	platform StatisticsBackend
}

func NewService(log *zap.Logger, orders OrderSource, snaps SnapshotStore, platform StatisticsBackend) *Service {
	return &Service{log: log, orders: orders, snaps: snaps, platform: platform}
}

// History retorna uma página de pedidos decodificados mais o total do filtro.
// Divergências entre o state liquidado e o veredito do classificador são
// logadas como advisory e nunca bloqueiam a resposta.
func (s *Service) History(ctx context.Context, f repo.HistoryFilter) (dto.HistoryResponse, error) {
	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return dto.HistoryResponse{}, err
	}

	views := make([]dto.OrderView, 0, len(orders))
	for i := range orders {
		v, err := s.decode(&orders[i])
		if err != nil {
			return dto.HistoryResponse{}, fmt.Errorf("decode order %s: %w", orders[i].ID, err)
		}
		views = append(views, v)
	}

	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	return dto.HistoryResponse{Data: views, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) decode(o *game.Order) (dto.OrderView, error) {
	bet, result, err := game.DescribeOrder(*o)
	if err != nil {
		return dto.OrderView{}, err
	}

	v := dto.OrderView{
		ID:             o.ID,
		GameFamily:     string(o.GameFamily),
		IssueNumber:    o.IssueNumber,
		Bet:            bet,
		Result:         result,
		AmountCents:    o.AmountCents,
		FeeCents:       o.FeeCents,
		WinAmountCents: o.WinAmountCents,
		State:          string(o.State),
		CreatedAt:      o.CreatedAt,
	}

	if o.Settled() {
		mismatch, err := game.VerifyOrder(*o)
		if err != nil {
			return dto.OrderView{}, err
		}
		if mismatch != nil {
			s.log.Warn("order state disagrees with classifier",
				zap.String("orderId", mismatch.OrderID),
				zap.String("reported", string(mismatch.Reported)),
				zap.String("computed", string(mismatch.Computed)),
			)
			v.Outcome = string(mismatch.Computed)
		} else if o.State == game.StateWinning {
			v.Outcome = string(game.OutcomeWin)
		} else {
			v.Outcome = string(game.OutcomeLose)
		}
	}
	return v, nil
}

// Statistics serve o snapshot comprometido do escopo; sem snapshot, refaz o
// fold completo do histórico e semeia o store.
func (s *Service) Statistics(ctx context.Context, customerID string, f stats.Filter) (stats.Snapshot, error) {
	snap, err := s.snaps.Get(ctx, customerID, f)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, store.ErrNoSnapshot) {
		// Store indisponível não derruba a consulta; recomputa do histórico.
		s.log.Warn("snapshot store read failed", zap.Error(err))
	}

	return s.Recompute(ctx, customerID, f)
}

// Recompute refaz o fold completo do escopo a partir do repositório e
// compromete o resultado no store.
func (s *Service) Recompute(ctx context.Context, customerID string, f stats.Filter) (stats.Snapshot, error) {
	orders, err := s.orders.ListSettledAsc(ctx, customerID, f)
	if err != nil {
		return stats.Snapshot{}, err
	}
	snap := stats.Fold(orders, f)
	if err := s.snaps.Put(ctx, customerID, f, snap); err != nil {
		s.log.Warn("snapshot store write failed", zap.Error(err))
	}
	return snap, nil
}

// Verify recomputa os agregados do escopo e confronta com os pré-agregados
// do backend da plataforma.
func (s *Service) Verify(ctx context.Context, customerID string, f stats.Filter) (dto.VerifyResponse, error) {
	local, err := s.Recompute(ctx, customerID, f)
	if err != nil {
		return dto.VerifyResponse{}, err
	}
	remote, err := s.platform.GetBettingStatistics(ctx, customerID, f)
	if err != nil {
		return dto.VerifyResponse{}, err
	}

	resp := dto.VerifyResponse{
		Local:    toDTO(local.Statistics, local.Orders),
		Platform: toDTO(remote, 0),
		Match:    local.Statistics == remote,
	}
	if !resp.Match {
		s.log.Warn("aggregate mismatch against platform backend",
			zap.String("customerId", customerID),
			zap.String("family", string(f.Family)),
			zap.String("playStyle", string(f.PlayStyle)),
		)
	}
	return resp, nil
}

func toDTO(st stats.Statistics, orders int) dto.StatisticsResponse {
	return dto.StatisticsResponse{
		CurrentWinStreak: st.CurrentWinStreak,
		MaxWinStreak:     st.MaxWinStreak,
		MaxBetCents:      st.MaxBetCents,
		MaxWinCents:      st.MaxWinCents,
		TotalBetCents:    st.TotalBetCents,
		TotalWinCents:    st.TotalWinCents,
		Orders:           orders,
	}
}
