// Package store guarda o último Snapshot comprometido de cada escopo
// (cliente + filtro) no Redis. Leituras servem o snapshot comprometido sem
// bloquear; appends concorrentes no mesmo escopo são serializados por
// compare-and-swap otimista sobre o contador de versão.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/operadash/betting-ops-core/internal/game"
	"github.com/operadash/betting-ops-core/internal/stats"
)

// ErrNoSnapshot indica escopo ainda sem snapshot comprometido;
// o chamador deve semear com um fold completo.
var ErrNoSnapshot = errors.New("no snapshot for scope")

// casRetries limita tentativas de CAS antes de desistir do caminho
// incremental e cair para recomputação completa.
const casRetries = 3

type Snapshots struct {
	R *redis.Client
}

func New(r *redis.Client) *Snapshots { return &Snapshots{R: r} }

// key gera a chave Redis do escopo; filtro vazio vira "ALL".
func key(customerID string, f stats.Filter) string {
	family := "ALL"
	if f.Family != "" {
		family = string(f.Family)
	}
	style := "ALL"
	if f.PlayStyle != "" {
		style = string(f.PlayStyle)
	}
	return fmt.Sprintf("betstats:%s:%s:%s", customerID, family, style)
}

// Get retorna o último snapshot comprometido do escopo.
func (s *Snapshots) Get(ctx context.Context, customerID string, f stats.Filter) (stats.Snapshot, error) {
	b, err := s.R.Get(ctx, key(customerID, f)).Bytes()
	if err == redis.Nil {
		return stats.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return stats.Snapshot{}, err
	}
	var snap stats.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return stats.Snapshot{}, err
	}
	return snap, nil
}

// Put substitui o snapshot do escopo (resultado de um fold completo).
func (s *Snapshots) Put(ctx context.Context, customerID string, f stats.Filter, snap stats.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, key(customerID, f), b, 0).Err()
}

// Append aplica um pedido liquidado ao snapshot do escopo via WATCH/MULTI.
// Se outro writer comprometer a chave entre a leitura e o commit, a
// transação falha e é retentada; a versão do snapshot só avança uma vez por
// pedido aplicado. Propaga stats.ErrUnsortedInput sem tocar o estado.
func (s *Snapshots) Append(ctx context.Context, customerID string, f stats.Filter, o game.Order) (stats.Snapshot, error) {
	k := key(customerID, f)
	var out stats.Snapshot

	txn := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, k).Bytes()
		if err == redis.Nil {
			return ErrNoSnapshot
		}
		if err != nil {
			return err
		}
		var snap stats.Snapshot
		if err := json.Unmarshal(b, &snap); err != nil {
			return err
		}

		next, err := stats.Append(snap, o)
		if err != nil {
			return err
		}

		nb, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, nb, 0)
			return nil
		})
		if err != nil {
			return err
		}
		out = next
		return nil
	}

	for i := 0; i < casRetries; i++ {
		err := s.R.Watch(ctx, txn, k)
		if err == nil {
			return out, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return stats.Snapshot{}, err
	}
	return stats.Snapshot{}, fmt.Errorf("append %s: cas retries exhausted", k)
}
