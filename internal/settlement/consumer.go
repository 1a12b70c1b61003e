// Package settlement consome eventos order_settled e mantém os snapshots de
// estatísticas por escopo atualizados de forma incremental, recomputando do
// histórico quando o caminho incremental não se aplica.
package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/operadash/betting-ops-core/internal/game"
	sharedkafka "github.com/operadash/betting-ops-core/internal/shared/kafka"
	"github.com/operadash/betting-ops-core/internal/stats"
	"github.com/operadash/betting-ops-core/internal/stats/store"
	"github.com/operadash/betting-ops-core/pkg/contracts/events"
)

// SnapshotStore é o subconjunto do store Redis usado pelo worker.
type SnapshotStore interface {
	Append(ctx context.Context, customerID string, f stats.Filter, o game.Order) (stats.Snapshot, error)
	Put(ctx context.Context, customerID string, f stats.Filter, snap stats.Snapshot) error
}

// HistorySource fornece o histórico liquidado para recomputação completa.
type HistorySource interface {
	ListSettledAsc(ctx context.Context, customerID string, f stats.Filter) ([]game.Order, error)
}

// Consumer consome order_settled do Kafka, confere o state contra o
// classificador e aplica o pedido aos snapshots dos escopos afetados.
// Callbacks de métricas monitoram cada etapa.
type Consumer struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Store  SnapshotStore
	Repo   HistorySource
	DLQ    *kafka.Writer // opcional

	OnConsumed   func()
	OnApplied    func()
	OnRecomputed func()
	OnMismatch   func()
	OnError      func(stage string)
}

// Run inicia o loop principal de consumo.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Log.Warn("kafka read failed", zap.Error(err))
			c.errStage("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if c.OnConsumed != nil {
			c.OnConsumed()
		}

		var ev events.OrderSettled
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.Log.Error("invalid order_settled payload", zap.Error(err))
			c.errStage("decode")
			c.deadLetter(ctx, string(m.Key), m.Value)
			continue
		}

		if err := c.processOne(ctx, &ev); err != nil {
			c.Log.Error("process order_settled", zap.String("orderId", ev.OrderID), zap.Error(err))
			c.errStage("apply")
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne decodifica o evento, confere o state liquidado contra o
// classificador (advisory) e aplica o pedido a cada escopo afetado.
func (c *Consumer) processOne(ctx context.Context, ev *events.OrderSettled) error {
	o, err := orderFromEvent(ev)
	if err != nil {
		c.deadLetter(ctx, ev.OrderID, mustJSON(ev))
		return err
	}

	mismatch, err := game.VerifyOrder(o)
	if err != nil {
		return err
	}
	if mismatch != nil {
		// Backend é autoritativo para pagamento; divergência só é sinalizada.
		c.Log.Warn("settled state disagrees with classifier",
			zap.String("orderId", mismatch.OrderID),
			zap.String("reported", string(mismatch.Reported)),
			zap.String("computed", string(mismatch.Computed)),
		)
		if c.OnMismatch != nil {
			c.OnMismatch()
		}
	}

	for _, scope := range Scopes(o) {
		if err := c.applyScope(ctx, o, scope); err != nil {
			return fmt.Errorf("scope %v: %w", scope, err)
		}
	}
	return nil
}

// Scopes enumera os escopos de snapshot que um pedido alimenta:
// geral, por família e por família+estilo de jogada.
func Scopes(o game.Order) []stats.Filter {
	return []stats.Filter{
		{},
		{Family: o.GameFamily},
		{Family: o.GameFamily, PlayStyle: o.Selection.Kind},
	}
}

// applyScope tenta o caminho incremental (CAS no store); cai para a
// recomputação completa quando o escopo ainda não tem snapshot, quando a
// entrada chega fora de ordem ou quando o CAS esgota as tentativas.
func (c *Consumer) applyScope(ctx context.Context, o game.Order, scope stats.Filter) error {
	_, err := c.Store.Append(ctx, o.CustomerID, scope, o)
	if err == nil {
		if c.OnApplied != nil {
			c.OnApplied()
		}
		return nil
	}

	if errors.Is(err, store.ErrNoSnapshot) || errors.Is(err, stats.ErrUnsortedInput) {
		return c.recompute(ctx, o.CustomerID, scope)
	}
	// CAS esgotado ou store indisponível: recomputação também é o caminho
	// seguro, o fold é idempotente sobre o histórico.
	c.Log.Warn("incremental append failed, recomputing scope", zap.Error(err))
	return c.recompute(ctx, o.CustomerID, scope)
}

func (c *Consumer) recompute(ctx context.Context, customerID string, scope stats.Filter) error {
	orders, err := c.Repo.ListSettledAsc(ctx, customerID, scope)
	if err != nil {
		return err
	}
	snap := stats.Fold(orders, scope)
	if err := c.Store.Put(ctx, customerID, scope, snap); err != nil {
		return err
	}
	if c.OnRecomputed != nil {
		c.OnRecomputed()
	}
	return nil
}

// orderFromEvent materializa o pedido liquidado a partir do evento.
func orderFromEvent(ev *events.OrderSettled) (game.Order, error) {
	family := game.GameFamily(ev.GameFamily)
	state := game.OrderState(ev.State)
	if state != game.StateWinning && state != game.StateLosing {
		return game.Order{}, fmt.Errorf("event %s: state %q is not settled", ev.OrderID, ev.State)
	}

	var sel game.Selection
	if err := json.Unmarshal(ev.Selection, &sel); err != nil {
		return game.Order{}, fmt.Errorf("event %s selection: %w", ev.OrderID, err)
	}
	if err := sel.Validate(family); err != nil {
		return game.Order{}, fmt.Errorf("event %s: %w", ev.OrderID, err)
	}
	var res game.DrawResult
	if err := json.Unmarshal(ev.Result, &res); err != nil {
		return game.Order{}, fmt.Errorf("event %s result: %w", ev.OrderID, err)
	}

	return game.Order{
		ID:             ev.OrderID,
		CustomerID:     ev.CustomerID,
		GameFamily:     family,
		IssueNumber:    ev.IssueNumber,
		Selection:      sel,
		AmountCents:    ev.AmountCents,
		FeeCents:       ev.FeeCents,
		WinAmountCents: ev.WinAmountCents,
		State:          state,
		CreatedAt:      ev.CreatedAt,
		Result:         &res,
	}, nil
}

func (c *Consumer) deadLetter(ctx context.Context, key string, payload []byte) {
	if c.DLQ == nil {
		return
	}
	if err := sharedkafka.WriteJSON(ctx, c.DLQ, key, payload); err != nil {
		c.Log.Error("dlq write failed", zap.Error(err))
		c.errStage("dlq")
	}
}

func (c *Consumer) errStage(stage string) {
	if c.OnError != nil {
		c.OnError(stage)
	}
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
