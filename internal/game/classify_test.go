package game

import (
	"errors"
	"testing"
	"time"
)

func mustWin(t *testing.T, f GameFamily, s Selection, r DrawResult) {
	t.Helper()
	got, err := Classify(f, s, r)
	if err != nil {
		t.Fatalf("Classify(%s, %+v): %v", f, s, err)
	}
	if got != OutcomeWin {
		t.Errorf("Classify(%s, %+v, %+v) = %s, want WIN", f, s, r, got)
	}
}

func mustLose(t *testing.T, f GameFamily, s Selection, r DrawResult) {
	t.Helper()
	got, err := Classify(f, s, r)
	if err != nil {
		t.Fatalf("Classify(%s, %+v): %v", f, s, err)
	}
	if got != OutcomeLose {
		t.Errorf("Classify(%s, %+v, %+v) = %s, want LOSE", f, s, r, got)
	}
}

func TestClassifyWingo(t *testing.T) {
	// resultado 5 Tím Lớn
	r := NewWingoResult(5, ColorViolet)

	mustWin(t, FamilyWingo, Selection{Kind: SelNumber, Digit: 5}, r)
	mustLose(t, FamilyWingo, Selection{Kind: SelNumber, Digit: 4}, r)
	mustWin(t, FamilyWingo, Selection{Kind: SelColor, Color: ColorViolet}, r)
	// VIOLET é classe própria: não paga aposta RED nem GREEN
	mustLose(t, FamilyWingo, Selection{Kind: SelColor, Color: ColorRed}, r)
	mustLose(t, FamilyWingo, Selection{Kind: SelColor, Color: ColorGreen}, r)
	mustWin(t, FamilyWingo, Selection{Kind: SelSize, Size: SizeBig}, r)
	mustLose(t, FamilyWingo, Selection{Kind: SelSize, Size: SizeSmall}, r)

	// limite SMALL/BIG: 4 é SMALL, 5 é BIG
	small := NewWingoResult(4, ColorGreen)
	mustWin(t, FamilyTrxWingo, Selection{Kind: SelSize, Size: SizeSmall}, small)
	mustLose(t, FamilyTrxWingo, Selection{Kind: SelSize, Size: SizeBig}, small)
}

func TestClassifyK3Triple(t *testing.T) {
	r := NewK3Result(4, 4, 4)

	mustWin(t, FamilyK3, Selection{Kind: SelTripleAny}, r)
	mustWin(t, FamilyK3, Selection{Kind: SelTripleSpecific, Face: 4}, r)
	mustLose(t, FamilyK3, Selection{Kind: SelTripleSpecific, Face: 2}, r)
	// trinca contém um par, então DOUBLE_ANY paga
	mustWin(t, FamilyK3, Selection{Kind: SelDoubleAny}, r)
	// mas DOUBLE_SPECIFIC exige exatamente dois dados na face
	mustLose(t, FamilyK3, Selection{Kind: SelDoubleSpecific, Face: 4}, r)
	mustWin(t, FamilyK3, Selection{Kind: SelSum, Sum: 12}, r)
	mustLose(t, FamilyK3, Selection{Kind: SelSum, Sum: 11}, r)
	mustWin(t, FamilyK3, Selection{Kind: SelBigSmall, Size: SizeBig}, r) // 12 em 11..18
	mustWin(t, FamilyK3, Selection{Kind: SelOddEven, Parity: ParityEven}, r)
	mustLose(t, FamilyK3, Selection{Kind: SelThreeDistinct}, r)
	mustLose(t, FamilyK3, Selection{Kind: SelTwoDistinct}, r)
	mustLose(t, FamilyK3, Selection{Kind: SelThreeConsecutive}, r)
}

func TestClassifyK3Double(t *testing.T) {
	r := NewK3Result(2, 5, 2)

	mustWin(t, FamilyK3, Selection{Kind: SelDoubleAny}, r)
	mustWin(t, FamilyK3, Selection{Kind: SelDoubleSpecific, Face: 2}, r)
	mustLose(t, FamilyK3, Selection{Kind: SelDoubleSpecific, Face: 5}, r)
	mustWin(t, FamilyK3, Selection{Kind: SelTwoDistinct}, r)
	mustLose(t, FamilyK3, Selection{Kind: SelThreeDistinct}, r)
	mustLose(t, FamilyK3, Selection{Kind: SelTripleAny}, r)
	mustLose(t, FamilyK3, Selection{Kind: SelBigSmall, Size: SizeBig}, r) // soma 9 é SMALL
	mustWin(t, FamilyK3, Selection{Kind: SelBigSmall, Size: SizeSmall}, r)
	mustWin(t, FamilyK3, Selection{Kind: SelOddEven, Parity: ParityOdd}, r)
}

func TestClassifyK3Sequences(t *testing.T) {
	// sequência fora de ordem de sorteio ainda é consecutiva
	run := NewK3Result(3, 1, 2)
	mustWin(t, FamilyK3, Selection{Kind: SelThreeConsecutive}, run)
	mustWin(t, FamilyK3, Selection{Kind: SelThreeDistinct}, run)
	mustLose(t, FamilyK3, Selection{Kind: SelTwoDistinct}, run)
	mustWin(t, FamilyK3, Selection{Kind: SelSum, Sum: 6}, run)

	gap := NewK3Result(2, 4, 6)
	mustLose(t, FamilyK3, Selection{Kind: SelThreeConsecutive}, gap)
	mustWin(t, FamilyK3, Selection{Kind: SelThreeDistinct}, gap)

	// limite BIG/SMALL da soma: 10 é SMALL, 11 é BIG
	mustWin(t, FamilyK3, Selection{Kind: SelBigSmall, Size: SizeSmall}, NewK3Result(2, 4, 4))
	mustWin(t, FamilyK3, Selection{Kind: SelBigSmall, Size: SizeBig}, NewK3Result(3, 4, 4))
}

func TestClassify5D(t *testing.T) {
	// dígitos 7 2 9 0 5, soma 23
	r := New5DResult([5]int{7, 2, 9, 0, 5})

	mustWin(t, Family5D, Selection{Kind: SelDigitSpecific, Position: PositionA, Digit: 7}, r)
	mustLose(t, Family5D, Selection{Kind: SelDigitSpecific, Position: PositionA, Digit: 2}, r)
	// dígito 2 da posição B é LOW
	mustLose(t, Family5D, Selection{Kind: SelDigitHighLow, Position: PositionB, Range: RangeHigh}, r)
	mustWin(t, Family5D, Selection{Kind: SelDigitHighLow, Position: PositionB, Range: RangeLow}, r)
	mustWin(t, Family5D, Selection{Kind: SelDigitOddEven, Position: PositionC, Parity: ParityOdd}, r)
	mustWin(t, Family5D, Selection{Kind: SelDigitSpecific, Position: PositionE, Digit: 5}, r)
	// soma 23: ímpar e exatamente no limiar HIGH
	mustWin(t, Family5D, Selection{Kind: SelSumOddEven, Position: PositionSum, Parity: ParityOdd}, r)
	mustWin(t, Family5D, Selection{Kind: SelSumHighLow, Position: PositionSum, Range: RangeHigh}, r)
	mustLose(t, Family5D, Selection{Kind: SelSumHighLow, Position: PositionSum, Range: RangeLow}, r)

	low := New5DResult([5]int{4, 3, 5, 4, 6}) // soma 22, último LOW
	mustWin(t, Family5D, Selection{Kind: SelSumHighLow, Position: PositionSum, Range: RangeLow}, low)
	mustWin(t, Family5D, Selection{Kind: SelSumOddEven, Position: PositionSum, Parity: ParityEven}, low)
}

func TestClassifyOrderWaiting(t *testing.T) {
	o := Order{
		ID:         "o1",
		GameFamily: FamilyWingo,
		Selection:  Selection{Kind: SelNumber, Digit: 3},
		State:      StateWaiting,
	}
	if _, err := ClassifyOrder(o); !errors.Is(err, ErrIncompleteResult) {
		t.Fatalf("want ErrIncompleteResult, got %v", err)
	}
}

func TestClassifyUnknownVariant(t *testing.T) {
	if _, err := Classify(FamilyK3, Selection{Kind: "MAGIC"}, NewK3Result(1, 2, 3)); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("want ErrUnknownVariant, got %v", err)
	}
}

// Corpus liquidado: o state persistido deve concordar com o classificador;
// divergência gera relatório advisory, nunca erro.
func TestVerifyOrder(t *testing.T) {
	res := NewWingoResult(8, ColorGreen)
	agree := Order{
		ID:         "ok",
		GameFamily: FamilyWingo,
		Selection:  Selection{Kind: SelSize, Size: SizeBig},
		State:      StateWinning,
		CreatedAt:  time.Now(),
		Result:     &res,
	}
	m, err := VerifyOrder(agree)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Fatalf("unexpected mismatch: %+v", m)
	}

	disagree := agree
	disagree.ID = "bad"
	disagree.State = StateLosing
	m, err = VerifyOrder(disagree)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("want mismatch report")
	}
	if m.Reported != StateLosing || m.Computed != OutcomeWin {
		t.Errorf("report = %+v", m)
	}
}
