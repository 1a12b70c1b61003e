package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/operadash/betting-ops-core/internal/game"
	"github.com/operadash/betting-ops-core/internal/stats"
	"github.com/operadash/betting-ops-core/internal/stats/store"
	"github.com/operadash/betting-ops-core/pkg/contracts/events"
)

var t0 = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	m       map[string]stats.Snapshot
	history []game.Order
	puts    int
}

func key(customerID string, f stats.Filter) string {
	return fmt.Sprintf("%s/%s/%s", customerID, f.Family, f.PlayStyle)
}

func (f *fakeStore) Append(_ context.Context, customerID string, flt stats.Filter, o game.Order) (stats.Snapshot, error) {
	snap, ok := f.m[key(customerID, flt)]
	if !ok {
		return stats.Snapshot{}, store.ErrNoSnapshot
	}
	next, err := stats.Append(snap, o)
	if err != nil {
		return stats.Snapshot{}, err
	}
	f.m[key(customerID, flt)] = next
	return next, nil
}

func (f *fakeStore) Put(_ context.Context, customerID string, flt stats.Filter, snap stats.Snapshot) error {
	f.m[key(customerID, flt)] = snap
	f.puts++
	return nil
}

func (f *fakeStore) ListSettledAsc(_ context.Context, _ string, flt stats.Filter) ([]game.Order, error) {
	var out []game.Order
	for _, o := range f.history {
		if o.Settled() && flt.Matches(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func settledEvent(seq int, win bool) *events.OrderSettled {
	state := "LOSING"
	winCents := int64(0)
	if win {
		state = "WINNING"
		winCents = 900
	}
	sel, _ := json.Marshal(game.Selection{Kind: game.SelNumber, Digit: 5})
	res, _ := json.Marshal(game.NewWingoResult(5, game.ColorGreen))
	if !win {
		res, _ = json.Marshal(game.NewWingoResult(2, game.ColorRed))
	}
	return &events.OrderSettled{
		OrderID:        fmt.Sprintf("o%03d", seq),
		CustomerID:     "c1",
		GameFamily:     string(game.FamilyWingo),
		IssueNumber:    fmt.Sprintf("2026%03d", seq),
		Selection:      sel,
		Result:         res,
		AmountCents:    500,
		WinAmountCents: winCents,
		State:          state,
		CreatedAt:      t0.Add(time.Duration(seq) * time.Minute),
		SettledAt:      t0.Add(time.Duration(seq)*time.Minute + 30*time.Second),
	}
}

func newConsumer(fs *fakeStore) (*Consumer, *int, *int, *int) {
	var applied, recomputed, mismatches int
	c := &Consumer{
		Log:          zap.NewNop(),
		Store:        fs,
		Repo:         fs,
		OnApplied:    func() { applied++ },
		OnRecomputed: func() { recomputed++ },
		OnMismatch:   func() { mismatches++ },
	}
	return c, &applied, &recomputed, &mismatches
}

func TestProcessOneSeedsAndAppends(t *testing.T) {
	fs := &fakeStore{m: map[string]stats.Snapshot{}}
	c, applied, recomputed, _ := newConsumer(fs)

	// primeiro evento: nenhum escopo tem snapshot, os três são semeados
	ev := settledEvent(0, true)
	o, err := orderFromEvent(ev)
	if err != nil {
		t.Fatal(err)
	}
	fs.history = append(fs.history, o)
	if err := c.processOne(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if *recomputed != 3 || *applied != 0 {
		t.Fatalf("seed: applied=%d recomputed=%d", *applied, *recomputed)
	}

	// segundo evento: caminho incremental nos três escopos
	ev = settledEvent(1, false)
	o, err = orderFromEvent(ev)
	if err != nil {
		t.Fatal(err)
	}
	fs.history = append(fs.history, o)
	if err := c.processOne(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if *applied != 3 {
		t.Fatalf("incremental: applied=%d", *applied)
	}

	all := fs.m[key("c1", stats.Filter{})]
	if all.Orders != 2 || all.MaxWinStreak != 1 || all.CurrentWinStreak != 0 {
		t.Errorf("all scope: %+v", all)
	}
	style := fs.m[key("c1", stats.Filter{Family: game.FamilyWingo, PlayStyle: game.SelNumber})]
	if style.Orders != 2 || style.TotalBetCents != 1000 {
		t.Errorf("style scope: %+v", style)
	}
}

func TestProcessOneRecoversFromUnsortedInput(t *testing.T) {
	fs := &fakeStore{m: map[string]stats.Snapshot{}}
	c, _, recomputed, _ := newConsumer(fs)

	later := settledEvent(5, true)
	earlier := settledEvent(2, true)
	oLater, _ := orderFromEvent(later)
	oEarlier, _ := orderFromEvent(earlier)
	fs.history = []game.Order{oEarlier, oLater}

	if err := c.processOne(context.Background(), later); err != nil {
		t.Fatal(err)
	}
	before := *recomputed

	// evento atrasado: append incremental falha, escopo recomputa do histórico
	if err := c.processOne(context.Background(), earlier); err != nil {
		t.Fatal(err)
	}
	if *recomputed != before+3 {
		t.Fatalf("recomputed=%d, want %d", *recomputed, before+3)
	}

	all := fs.m[key("c1", stats.Filter{})]
	if all.Orders != 2 || all.CurrentWinStreak != 2 {
		t.Errorf("after recovery: %+v", all)
	}
}

func TestProcessOneFlagsStateMismatch(t *testing.T) {
	fs := &fakeStore{m: map[string]stats.Snapshot{}}
	c, _, _, mismatches := newConsumer(fs)

	// backend liquidou como WINNING, mas o sorteio não bate com a aposta
	ev := settledEvent(0, true)
	res, _ := json.Marshal(game.NewWingoResult(2, game.ColorRed))
	ev.Result = res
	o, err := orderFromEvent(ev)
	if err != nil {
		t.Fatal(err)
	}
	fs.history = []game.Order{o}

	if err := c.processOne(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if *mismatches != 1 {
		t.Fatalf("mismatches=%d, want 1", *mismatches)
	}
}

func TestOrderFromEventRejectsBadPayload(t *testing.T) {
	ev := settledEvent(0, true)
	ev.State = "WAITING"
	if _, err := orderFromEvent(ev); err == nil {
		t.Fatal("unsettled state must be rejected")
	}

	ev = settledEvent(1, true)
	ev.Selection, _ = json.Marshal(game.Selection{Kind: "MAGIC"})
	if _, err := orderFromEvent(ev); err == nil {
		t.Fatal("unknown selection variant must be rejected")
	}
}

func TestScopesOfOrder(t *testing.T) {
	o := game.Order{GameFamily: game.FamilyK3, Selection: game.Selection{Kind: game.SelBigSmall, Size: game.SizeBig}}
	got := Scopes(o)
	want := []stats.Filter{
		{},
		{Family: game.FamilyK3},
		{Family: game.FamilyK3, PlayStyle: game.SelBigSmall},
	}
	if len(got) != len(want) {
		t.Fatalf("scopes: %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scope %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
