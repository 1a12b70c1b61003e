package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Tabelas de rótulos exibidos no dashboard. São superfície de
// compatibilidade: consumidores comparam/persistem essas strings,
// então qualquer mudança aqui é quebra de contrato.
var (
	colorLabels = map[Color]string{
		ColorRed:    "Đỏ",
		ColorGreen:  "Xanh",
		ColorViolet: "Tím",
	}
	sizeLabels = map[Size]string{
		SizeBig:   "Lớn",
		SizeSmall: "Nhỏ",
	}
	parityLabels = map[Parity]string{
		ParityOdd:  "Lẻ",
		ParityEven: "Chẵn",
	}
	rangeLabels = map[HighLow]string{
		RangeHigh: "Cao",
		RangeLow:  "Thấp",
	}
	positionLabels = map[Position]string{
		PositionA:   "Vị trí 1",
		PositionB:   "Vị trí 2",
		PositionC:   "Vị trí 3",
		PositionD:   "Vị trí 4",
		PositionE:   "Vị trí 5",
		PositionSum: "Tổng",
	}
)

// Describe converte a seleção em um descritor legível, único por variante.
// Total e determinística: toda variante modelada tem exatamente um rótulo;
// não existe caso default que engula informação.
func Describe(f GameFamily, s Selection) (string, error) {
	if err := s.Validate(f); err != nil {
		return "", err
	}

	switch s.Kind {
	case SelNumber:
		return "Số " + strconv.Itoa(s.Digit), nil
	case SelColor:
		return colorLabels[s.Color], nil
	case SelSize:
		return sizeLabels[s.Size], nil

	case SelSum:
		return "Tổng " + strconv.Itoa(s.Sum), nil
	case SelTripleAny:
		return "Bão bất kỳ", nil
	case SelTripleSpecific:
		return "Bão " + strconv.Itoa(s.Face), nil
	case SelDoubleAny:
		return "Đôi bất kỳ", nil
	case SelDoubleSpecific:
		return "Đôi " + strconv.Itoa(s.Face), nil
	case SelThreeDistinct:
		return "Ba số khác nhau", nil
	case SelTwoDistinct:
		return "Hai số khác nhau", nil
	case SelThreeConsecutive:
		return "Ba số liên tiếp", nil
	case SelOddEven:
		return parityLabels[s.Parity], nil
	case SelBigSmall:
		return sizeLabels[s.Size], nil

	case SelDigitSpecific:
		return positionLabels[s.Position] + " - Số " + strconv.Itoa(s.Digit), nil
	case SelDigitHighLow, SelSumHighLow:
		return positionLabels[s.Position] + " - " + rangeLabels[s.Range], nil
	case SelDigitOddEven, SelSumOddEven:
		return positionLabels[s.Position] + " - " + parityLabels[s.Parity], nil
	}

	// Inalcançável para as famílias modeladas; Validate já barrou o resto.
	return "", fmt.Errorf("describe %q: %w", s.Kind, ErrUnknownVariant)
}

// DescribeResult converte o resultado sorteado em um descritor legível:
// dígito + cor + tamanho para Wingo, três dados na ordem sorteada mais a
// soma para K3, os cinco dígitos mais a soma para 5D.
func DescribeResult(f GameFamily, r DrawResult) (string, error) {
	switch f {
	case FamilyWingo, FamilyTrxWingo:
		if r.Number < 0 || r.Number > 9 {
			return "", fmt.Errorf("wingo number %d: %w", r.Number, ErrUnknownVariant)
		}
		return fmt.Sprintf("%d %s %s", r.Number, colorLabels[r.Colour], sizeLabels[r.SizeClass]), nil

	case FamilyK3:
		parts := make([]string, 0, 3)
		for _, d := range r.Dice {
			if d < 1 || d > 6 {
				return "", fmt.Errorf("k3 die %d: %w", d, ErrUnknownVariant)
			}
			parts = append(parts, strconv.Itoa(d))
		}
		return fmt.Sprintf("%s (Tổng %d)", strings.Join(parts, "-"), r.Sum), nil

	case Family5D:
		var sb strings.Builder
		for _, d := range r.Digits {
			if d < 0 || d > 9 {
				return "", fmt.Errorf("5d digit %d: %w", d, ErrUnknownVariant)
			}
			sb.WriteString(strconv.Itoa(d))
		}
		return fmt.Sprintf("%s (Tổng %d)", sb.String(), r.Sum), nil
	}

	return "", fmt.Errorf("family %q: %w", f, ErrUnknownVariant)
}

// DescribeOrder devolve descritor da aposta e do resultado de um pedido.
// Resultado ausente vira o placeholder "-" (dado genuinamente ausente).
func DescribeOrder(o Order) (selection string, result string, err error) {
	selection, err = Describe(o.GameFamily, o.Selection)
	if err != nil {
		return "", "", err
	}
	if o.Result == nil {
		return selection, "-", nil
	}
	result, err = DescribeResult(o.GameFamily, *o.Result)
	if err != nil {
		return "", "", err
	}
	return selection, result, nil
}
