package cart

import "github.com/jrsteele09/go-storefront-client/api"

// Quantity bounds enforced before any network call; invalid quantities never
// reach the remote API.
const (
	MinQuantity = 1
	MaxQuantity = 100
)

// Line is one cart entry, unique per (ProductID, VariantID). Pending marks a
// line whose latest mutation has not been confirmed by the server yet.
type Line struct {
	LineID    string
	ProductID string
	VariantID string
	Quantity  int
	UnitPrice int64 // minor currency units, server-confirmed
	Pending   bool
}

// lineKey identifies a line for the pending-mutation guard.
type lineKey struct {
	productID string
	variantID string
}

func confirmedToLine(cl *api.ConfirmedLine) Line {
	return Line{
		LineID:    cl.LineID,
		ProductID: cl.ProductID,
		VariantID: cl.VariantID,
		Quantity:  cl.Quantity,
		UnitPrice: cl.UnitPrice,
	}
}
