// Package stats agrega pedidos liquidados em estatísticas correntes de
// aposta: sequência de vitórias atual/máxima e totais/máximos apostados
// e ganhos, por escopo (cliente + filtro).
package stats

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/operadash/betting-ops-core/internal/game"
)

// ErrUnsortedInput indica append incremental com pedido anterior ao cursor
// do snapshot. O chamador recupera refazendo o fold completo do histórico.
var ErrUnsortedInput = errors.New("order precedes aggregator cursor")

// Filter restringe o escopo da agregação. Campos vazios não filtram.
type Filter struct {
	Family    game.GameFamily    `json:"family,omitempty"`
	PlayStyle game.SelectionKind `json:"play_style,omitempty"`
}

// Matches informa se o pedido pertence ao escopo do filtro.
func (f Filter) Matches(o game.Order) bool {
	if f.Family != "" && o.GameFamily != f.Family {
		return false
	}
	if f.PlayStyle != "" && o.Selection.Kind != f.PlayStyle {
		return false
	}
	return true
}

// Statistics são os agregados derivados de uma sequência de pedidos
// liquidados; nunca persistidas de forma independente dos pedidos fonte.
type Statistics struct {
	CurrentWinStreak int   `json:"current_win_streak"`
	MaxWinStreak     int   `json:"max_win_streak"`
	MaxBetCents      int64 `json:"max_bet_cents"`
	MaxWinCents      int64 `json:"max_win_cents"`
	TotalBetCents    int64 `json:"total_bet_cents"`
	TotalWinCents    int64 `json:"total_win_cents"`
}

// Snapshot é o estado comprometido de um escopo: estatísticas mais o cursor
// (último pedido dobrado) e um contador de versão para CAS no store.
type Snapshot struct {
	Statistics
	Orders        int       `json:"orders"`
	LastCreatedAt time.Time `json:"last_created_at"`
	LastOrderID   string    `json:"last_order_id"`
	Version       int64     `json:"version"`
}

// before define a ordem cronológica usada pelo agregador:
// created_at ascendente, empate resolvido por id ascendente.
func before(aAt time.Time, aID string, bAt time.Time, bID string) bool {
	if !aAt.Equal(bAt) {
		return aAt.Before(bAt)
	}
	return aID < bID
}

// Fold recomputa as estatísticas de um escopo em uma única passada
// esquerda-direita. Reordena defensivamente a entrada (a ordem cronológica
// carrega a semântica da sequência de vitórias) e ignora pedidos WAITING e
// fora do filtro.
func Fold(orders []game.Order, f Filter) Snapshot {
	sorted := make([]game.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return before(sorted[i].CreatedAt, sorted[i].ID, sorted[j].CreatedAt, sorted[j].ID)
	})

	var snap Snapshot
	for i := range sorted {
		o := &sorted[i]
		if !o.Settled() || !f.Matches(*o) {
			continue
		}
		snap = apply(snap, o)
	}
	return snap
}

// Append aplica um único pedido recém-liquidado sobre o snapshot anterior,
// em O(1) amortizado. Puro e tudo-ou-nada: em erro o snapshot de entrada
// permanece o estado válido. O chamador pré-filtra o pedido para o escopo.
func Append(snap Snapshot, o game.Order) (Snapshot, error) {
	if !o.Settled() {
		return snap, fmt.Errorf("order %s: %w", o.ID, game.ErrIncompleteResult)
	}
	if snap.Orders > 0 && !before(snap.LastCreatedAt, snap.LastOrderID, o.CreatedAt, o.ID) {
		return snap, fmt.Errorf("order %s (%s) after cursor %s (%s): %w",
			o.ID, o.CreatedAt.Format(time.RFC3339), snap.LastOrderID,
			snap.LastCreatedAt.Format(time.RFC3339), ErrUnsortedInput)
	}
	return apply(snap, &o), nil
}

func apply(snap Snapshot, o *game.Order) Snapshot {
	if o.State == game.StateWinning {
		snap.CurrentWinStreak++
		if snap.CurrentWinStreak > snap.MaxWinStreak {
			snap.MaxWinStreak = snap.CurrentWinStreak
		}
	} else {
		snap.CurrentWinStreak = 0
	}

	snap.TotalBetCents += o.AmountCents
	snap.TotalWinCents += o.WinAmountCents
	if o.AmountCents > snap.MaxBetCents {
		snap.MaxBetCents = o.AmountCents
	}
	if o.WinAmountCents > snap.MaxWinCents {
		snap.MaxWinCents = o.WinAmountCents
	}

	snap.Orders++
	snap.LastCreatedAt = o.CreatedAt
	snap.LastOrderID = o.ID
	snap.Version++
	return snap
}
