package command

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	priceExponent    = 2 // currency units -> cents
	quantityExponent = 3 // MW -> kW
)

// Price is a unit price in currency units. It is encoded on the wire as an
// integer number of cents.
type Price struct {
	decimal.Decimal
}

// NewPrice parses a price such as "45.10".
func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("parse price %q: %w", s, err)
	}
	return Price{d}, nil
}

// PriceFromCents builds a Price from its wire value.
func PriceFromCents(cents int64) Price {
	return Price{decimal.New(cents, -priceExponent)}
}

// Cents returns the wire value. Fractions of a cent are an error.
func (p Price) Cents() (int64, error) {
	return minorUnits(p.Decimal, priceExponent, "price")
}

func (p Price) MarshalJSON() ([]byte, error) {
	cents, err := p.Cents()
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("%d", cents)), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("decode price: %w", err)
	}
	p.Decimal = d.Shift(-priceExponent)
	return nil
}

// Quantity is a volume in MW, encoded on the wire as an integer number of kW.
type Quantity struct {
	decimal.Decimal
}

// NewQuantity parses a quantity such as "0.5".
func NewQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	return Quantity{d}, nil
}

// QuantityFromKW builds a Quantity from its wire value.
func QuantityFromKW(kw int64) Quantity {
	return Quantity{decimal.New(kw, -quantityExponent)}
}

// KW returns the wire value. Fractions of a kW are an error.
func (q Quantity) KW() (int64, error) {
	return minorUnits(q.Decimal, quantityExponent, "quantity")
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	kw, err := q.KW()
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("%d", kw)), nil
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("decode quantity: %w", err)
	}
	q.Decimal = d.Shift(-quantityExponent)
	return nil
}

func minorUnits(d decimal.Decimal, exp int32, what string) (int64, error) {
	shifted := d.Shift(exp)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%s %s has more than %d decimal places", what, d.String(), exp)
	}
	return shifted.IntPart(), nil
}
