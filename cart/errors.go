package cart

import "errors"

var (
	VariantRequiredErr     = errors.New("product requires a variant selection")
	QuantityOutOfBoundsErr = errors.New("quantity outside allowed bounds")
	MutationInFlightErr    = errors.New("a mutation for this line is already in flight")
	LineNotFoundErr        = errors.New("cart line not found")
)
