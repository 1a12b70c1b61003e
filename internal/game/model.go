package game

import (
	"fmt"
	"time"
)

// GameFamily identifica o conjunto de regras de sorteio/aposta de um pedido.
type GameFamily string

const (
	FamilyWingo    GameFamily = "WINGO"
	FamilyTrxWingo GameFamily = "TRX_WINGO"
	FamilyK3       GameFamily = "K3"
	Family5D       GameFamily = "5D"
)

// Color é a cor sorteada/apostada nos jogos Wingo.
// VIOLET é uma terceira classe própria, não uma união de RED/GREEN.
type Color string

const (
	ColorRed    Color = "RED"
	ColorGreen  Color = "GREEN"
	ColorViolet Color = "VIOLET"
)

// Size classifica um dígito sorteado: SMALL para 0-4, BIG para 5-9.
type Size string

const (
	SizeSmall Size = "SMALL"
	SizeBig   Size = "BIG"
)

type Parity string

const (
	ParityOdd  Parity = "ODD"
	ParityEven Parity = "EVEN"
)

type HighLow string

const (
	RangeHigh HighLow = "HIGH"
	RangeLow  HighLow = "LOW"
)

// Position é a posição apostada no 5D: um dos cinco dígitos (A..E) ou a soma.
type Position string

const (
	PositionA   Position = "A"
	PositionB   Position = "B"
	PositionC   Position = "C"
	PositionD   Position = "D"
	PositionE   Position = "E"
	PositionSum Position = "SUM"
)

// SelectionKind discrimina a variante da aposta dentro da família.
type SelectionKind string

const (
	// Wingo / TRX-Wingo
	SelNumber SelectionKind = "NUMBER"
	SelColor  SelectionKind = "COLOR"
	SelSize   SelectionKind = "SIZE"

	// K3 (três dados de seis faces)
	SelSum              SelectionKind = "SUM"
	SelTripleAny        SelectionKind = "TRIPLE_ANY"
	SelTripleSpecific   SelectionKind = "TRIPLE_SPECIFIC"
	SelDoubleAny        SelectionKind = "DOUBLE_ANY"
	SelDoubleSpecific   SelectionKind = "DOUBLE_SPECIFIC"
	SelThreeDistinct    SelectionKind = "THREE_DISTINCT"
	SelTwoDistinct      SelectionKind = "TWO_DISTINCT"
	SelThreeConsecutive SelectionKind = "THREE_CONSECUTIVE"
	SelOddEven          SelectionKind = "ODD_EVEN"
	SelBigSmall         SelectionKind = "BIG_SMALL"

	// 5D (cinco dígitos, posições A..E mais a soma)
	SelDigitSpecific SelectionKind = "DIGIT_SPECIFIC"
	SelDigitHighLow  SelectionKind = "DIGIT_HIGH_LOW"
	SelDigitOddEven  SelectionKind = "DIGIT_ODD_EVEN"
	SelSumHighLow    SelectionKind = "SUM_HIGH_LOW"
	SelSumOddEven    SelectionKind = "SUM_ODD_EVEN"
)

// Selection é a aposta declarada do cliente. Kind discrimina a variante;
// apenas os campos da variante são preenchidos.
type Selection struct {
	Kind     SelectionKind `json:"kind"`
	Digit    int           `json:"digit,omitempty"`    // NUMBER, DIGIT_SPECIFIC (0..9)
	Color    Color         `json:"color,omitempty"`    // COLOR
	Size     Size          `json:"size,omitempty"`     // SIZE, BIG_SMALL
	Sum      int           `json:"sum,omitempty"`      // SUM (3..18)
	Face     int           `json:"face,omitempty"`     // TRIPLE_SPECIFIC, DOUBLE_SPECIFIC (1..6)
	Parity   Parity        `json:"parity,omitempty"`   // ODD_EVEN, DIGIT_ODD_EVEN, SUM_ODD_EVEN
	Range    HighLow       `json:"range,omitempty"`    // DIGIT_HIGH_LOW, SUM_HIGH_LOW
	Position Position      `json:"position,omitempty"` // somente 5D
}

// familyKinds define a taxonomia fechada de variantes por família.
var familyKinds = map[GameFamily][]SelectionKind{
	FamilyWingo:    {SelNumber, SelColor, SelSize},
	FamilyTrxWingo: {SelNumber, SelColor, SelSize},
	FamilyK3: {
		SelSum, SelTripleAny, SelTripleSpecific, SelDoubleAny, SelDoubleSpecific,
		SelThreeDistinct, SelTwoDistinct, SelThreeConsecutive, SelOddEven, SelBigSmall,
	},
	Family5D: {SelDigitSpecific, SelDigitHighLow, SelDigitOddEven, SelSumHighLow, SelSumOddEven},
}

// Kinds retorna as variantes de aposta válidas para a família.
func Kinds(f GameFamily) []SelectionKind {
	return familyKinds[f]
}

// Validate verifica se a seleção pertence à taxonomia da família
// e se os valores dos campos estão nos intervalos permitidos.
func (s Selection) Validate(f GameFamily) error {
	ok := false
	for _, k := range familyKinds[f] {
		if k == s.Kind {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("selection %q in family %q: %w", s.Kind, f, ErrUnknownVariant)
	}

	switch s.Kind {
	case SelNumber, SelDigitSpecific:
		if s.Digit < 0 || s.Digit > 9 {
			return fmt.Errorf("digit %d out of range 0..9", s.Digit)
		}
	case SelColor:
		if s.Color != ColorRed && s.Color != ColorGreen && s.Color != ColorViolet {
			return fmt.Errorf("color %q: %w", s.Color, ErrUnknownVariant)
		}
	case SelSize, SelBigSmall:
		if s.Size != SizeSmall && s.Size != SizeBig {
			return fmt.Errorf("size %q: %w", s.Size, ErrUnknownVariant)
		}
	case SelSum:
		if s.Sum < 3 || s.Sum > 18 {
			return fmt.Errorf("sum %d out of range 3..18", s.Sum)
		}
	case SelTripleSpecific, SelDoubleSpecific:
		if s.Face < 1 || s.Face > 6 {
			return fmt.Errorf("face %d out of range 1..6", s.Face)
		}
	case SelOddEven, SelDigitOddEven, SelSumOddEven:
		if s.Parity != ParityOdd && s.Parity != ParityEven {
			return fmt.Errorf("parity %q: %w", s.Parity, ErrUnknownVariant)
		}
	case SelDigitHighLow, SelSumHighLow:
		if s.Range != RangeHigh && s.Range != RangeLow {
			return fmt.Errorf("range %q: %w", s.Range, ErrUnknownVariant)
		}
	}

	// Variantes 5D exigem posição. SUM_* só vale para a posição da soma;
	// DIGIT_HIGH_LOW/DIGIT_ODD_EVEN só para as posições A..E.
	if f == Family5D {
		switch s.Position {
		case PositionA, PositionB, PositionC, PositionD, PositionE:
			if s.Kind == SelSumHighLow || s.Kind == SelSumOddEven {
				return fmt.Errorf("kind %q requires position SUM", s.Kind)
			}
		case PositionSum:
			if s.Kind == SelDigitHighLow || s.Kind == SelDigitOddEven {
				return fmt.Errorf("kind %q requires position A..E", s.Kind)
			}
		default:
			return fmt.Errorf("position %q: %w", s.Position, ErrUnknownVariant)
		}
	}
	return nil
}

// DrawResult é o resultado apurado de uma rodada. A família do pedido
// determina quais campos são significativos.
type DrawResult struct {
	Number    int    `json:"number,omitempty"`     // Wingo: dígito sorteado 0..9
	Colour    Color  `json:"colour,omitempty"`     // Wingo
	SizeClass Size   `json:"size_class,omitempty"` // Wingo: derivado do dígito
	Dice      [3]int `json:"dice,omitempty"`       // K3: três dados 1..6, na ordem sorteada
	Digits    [5]int `json:"digits,omitempty"`     // 5D: dígitos A..E
	Sum       int    `json:"sum,omitempty"`        // K3/5D: soma derivada
}

// SizeOfDigit classifica um dígito 0-4 como SMALL e 5-9 como BIG.
func SizeOfDigit(d int) Size {
	if d >= 5 {
		return SizeBig
	}
	return SizeSmall
}

// NewWingoResult monta o resultado de uma rodada Wingo/TRX-Wingo.
// A cor vem do backend de sorteio; o tamanho é derivado do dígito.
func NewWingoResult(number int, colour Color) DrawResult {
	return DrawResult{Number: number, Colour: colour, SizeClass: SizeOfDigit(number)}
}

// NewK3Result monta o resultado de uma rodada K3, derivando a soma.
func NewK3Result(d1, d2, d3 int) DrawResult {
	return DrawResult{Dice: [3]int{d1, d2, d3}, Sum: d1 + d2 + d3}
}

// New5DResult monta o resultado de uma rodada 5D, derivando a soma.
func New5DResult(digits [5]int) DrawResult {
	sum := 0
	for _, d := range digits {
		sum += d
	}
	return DrawResult{Digits: digits, Sum: sum}
}

// OrderState é o estado de liquidação de um pedido.
type OrderState string

const (
	StateWaiting OrderState = "WAITING"
	StateWinning OrderState = "WINNING"
	StateLosing  OrderState = "LOSING"
)

// Order é um pedido de aposta do cliente. Nasce WAITING sem resultado e
// transiciona exatamente uma vez para WINNING ou LOSING quando o backend
// liquida a rodada e anexa o resultado.
type Order struct {
	ID             string      `json:"id"`
	CustomerID     string      `json:"customer_id"`
	GameFamily     GameFamily  `json:"game_family"`
	IssueNumber    string      `json:"issue_number"`
	Selection      Selection   `json:"selection"`
	AmountCents    int64       `json:"amount_cents"`
	FeeCents       int64       `json:"fee_cents"`
	WinAmountCents int64       `json:"win_amount_cents"`
	State          OrderState  `json:"state"`
	CreatedAt      time.Time   `json:"created_at"`
	Result         *DrawResult `json:"result,omitempty"`
}

// Settled informa se o pedido já foi liquidado pelo backend.
func (o *Order) Settled() bool {
	return o.State == StateWinning || o.State == StateLosing
}

// Settle aplica a transição única WAITING -> WINNING|LOSING com o resultado.
func (o *Order) Settle(state OrderState, result DrawResult) error {
	if o.State != StateWaiting {
		return fmt.Errorf("order %s already settled as %s: %w", o.ID, o.State, ErrAlreadySettled)
	}
	if state != StateWinning && state != StateLosing {
		return fmt.Errorf("invalid settlement state %q", state)
	}
	o.State = state
	o.Result = &result
	return nil
}
