package game

import (
	"fmt"
	"sort"
)

// Outcome é o veredito independente de uma aposta liquidada.
type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLose Outcome = "LOSE"
)

func outcome(win bool) Outcome {
	if win {
		return OutcomeWin
	}
	return OutcomeLose
}

// Classify avalia se a seleção venceu contra o resultado sorteado.
// É a fonte única da regra de vitória; o state persistido pelo backend
// deve concordar com ela (ver VerifyOrder).
func Classify(f GameFamily, s Selection, r DrawResult) (Outcome, error) {
	if err := s.Validate(f); err != nil {
		return "", err
	}

	switch f {
	case FamilyWingo, FamilyTrxWingo:
		return classifyWingo(s, r)
	case FamilyK3:
		return classifyK3(s, r)
	case Family5D:
		return classify5D(s, r)
	}
	return "", fmt.Errorf("family %q: %w", f, ErrUnknownVariant)
}

// ClassifyOrder classifica um pedido já liquidado.
func ClassifyOrder(o Order) (Outcome, error) {
	if !o.Settled() || o.Result == nil {
		return "", fmt.Errorf("order %s: %w", o.ID, ErrIncompleteResult)
	}
	return Classify(o.GameFamily, o.Selection, *o.Result)
}

func classifyWingo(s Selection, r DrawResult) (Outcome, error) {
	switch s.Kind {
	case SelNumber:
		return outcome(s.Digit == r.Number), nil
	case SelColor:
		// Comparação exata de três classes; VIOLET não paga aposta RED/GREEN.
		return outcome(s.Color == r.Colour), nil
	case SelSize:
		return outcome(s.Size == r.SizeClass), nil
	}
	return "", fmt.Errorf("wingo selection %q: %w", s.Kind, ErrUnknownVariant)
}

func classifyK3(s Selection, r DrawResult) (Outcome, error) {
	d := r.Dice
	sum := d[0] + d[1] + d[2]

	// contagem por face 1..6
	var count [7]int
	for _, die := range d {
		count[die]++
	}

	switch s.Kind {
	case SelSum:
		return outcome(s.Sum == sum), nil

	case SelTripleAny:
		return outcome(d[0] == d[1] && d[1] == d[2]), nil

	case SelTripleSpecific:
		return outcome(count[s.Face] == 3), nil

	case SelDoubleAny:
		// Par em qualquer face; trinca contém um par e também satisfaz.
		for face := 1; face <= 6; face++ {
			if count[face] >= 2 {
				return OutcomeWin, nil
			}
		}
		return OutcomeLose, nil

	case SelDoubleSpecific:
		// Exatamente dois dados na face apostada; trinca da face não conta.
		return outcome(count[s.Face] == 2), nil

	case SelThreeDistinct:
		return outcome(d[0] != d[1] && d[1] != d[2] && d[0] != d[2]), nil

	case SelTwoDistinct:
		distinct := 0
		for face := 1; face <= 6; face++ {
			if count[face] > 0 {
				distinct++
			}
		}
		return outcome(distinct == 2), nil

	case SelThreeConsecutive:
		sorted := []int{d[0], d[1], d[2]}
		sort.Ints(sorted)
		return outcome(sorted[1] == sorted[0]+1 && sorted[2] == sorted[1]+1), nil

	case SelOddEven:
		drawn := ParityEven
		if sum%2 != 0 {
			drawn = ParityOdd
		}
		return outcome(s.Parity == drawn), nil

	case SelBigSmall:
		// BIG = soma 11..18, SMALL = soma 3..10.
		drawn := SizeSmall
		if sum >= 11 {
			drawn = SizeBig
		}
		return outcome(s.Size == drawn), nil
	}
	return "", fmt.Errorf("k3 selection %q: %w", s.Kind, ErrUnknownVariant)
}

// fiveDSumHigh é o limiar HIGH da soma 5D: soma 0..45, HIGH = 23..45.
const fiveDSumHigh = 23

func classify5D(s Selection, r DrawResult) (Outcome, error) {
	sum := 0
	for _, d := range r.Digits {
		sum += d
	}

	// valor avaliado: o dígito da posição ou a soma dos cinco
	value := sum
	switch s.Position {
	case PositionA:
		value = r.Digits[0]
	case PositionB:
		value = r.Digits[1]
	case PositionC:
		value = r.Digits[2]
	case PositionD:
		value = r.Digits[3]
	case PositionE:
		value = r.Digits[4]
	}

	switch s.Kind {
	case SelDigitSpecific:
		return outcome(value == s.Digit), nil

	case SelDigitHighLow:
		drawn := RangeLow
		if value >= 5 {
			drawn = RangeHigh
		}
		return outcome(s.Range == drawn), nil

	case SelDigitOddEven:
		drawn := ParityEven
		if value%2 != 0 {
			drawn = ParityOdd
		}
		return outcome(s.Parity == drawn), nil

	case SelSumHighLow:
		drawn := RangeLow
		if sum >= fiveDSumHigh {
			drawn = RangeHigh
		}
		return outcome(s.Range == drawn), nil

	case SelSumOddEven:
		drawn := ParityEven
		if sum%2 != 0 {
			drawn = ParityOdd
		}
		return outcome(s.Parity == drawn), nil
	}
	return "", fmt.Errorf("5d selection %q: %w", s.Kind, ErrUnknownVariant)
}

// StateMismatch relata divergência entre o state liquidado pelo backend e o
// veredito independente do classificador. Advisory: o backend é autoritativo
// para pagamento, mas a divergência indica bug de integridade de dados.
type StateMismatch struct {
	OrderID  string     `json:"order_id"`
	Reported OrderState `json:"reported"`
	Computed Outcome    `json:"computed"`
}

// VerifyOrder confronta o state persistido com Classify. Retorna o relatório
// de divergência (nil quando concordam) — nunca trata divergência como fatal.
func VerifyOrder(o Order) (*StateMismatch, error) {
	computed, err := ClassifyOrder(o)
	if err != nil {
		return nil, err
	}
	reported := outcome(o.State == StateWinning)
	if computed == reported {
		return nil, nil
	}
	return &StateMismatch{OrderID: o.ID, Reported: o.State, Computed: computed}, nil
}
