package game

import "errors"

var (
	// ErrUnknownVariant indica uma variante de Selection/DrawResult fora da
	// taxonomia modelada. Para as quatro famílias atuais é defeito de
	// programação, nunca um caso de dado válido.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrIncompleteResult indica classificação/descrição pedida para um
	// pedido ainda WAITING. O chamador deve aguardar a liquidação.
	ErrIncompleteResult = errors.New("result not available yet")

	// ErrAlreadySettled indica tentativa de liquidar um pedido já liquidado.
	ErrAlreadySettled = errors.New("order already settled")
)
