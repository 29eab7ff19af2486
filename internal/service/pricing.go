package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ShippingPolicy decides how a checkout's shipping cost is spread over its order rows
type ShippingPolicy string

const (
	// ShippingPerLine charges the full shipping cost on every order row
	ShippingPerLine ShippingPolicy = "per_line"
	// ShippingOnce charges shipping on the first order row of a checkout only
	ShippingOnce ShippingPolicy = "once"
)

// ParseShippingPolicy validates a configured policy name
func ParseShippingPolicy(s string) (ShippingPolicy, error) {
	switch p := ShippingPolicy(s); p {
	case ShippingPerLine, ShippingOnce:
		return p, nil
	case "":
		return ShippingPerLine, nil
	default:
		return "", fmt.Errorf("unknown shipping policy %q", s)
	}
}

// ShippingFor returns the shipping charged on the row at index rowIndex
func (p ShippingPolicy) ShippingFor(rowIndex int, shipping decimal.Decimal) decimal.Decimal {
	if p == ShippingOnce && rowIndex > 0 {
		return decimal.Zero
	}
	return shipping
}

// LineTotal computes unit_price * quantity + shipping
func LineTotal(unitPrice decimal.Decimal, quantity int, shipping decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Add(shipping)
}
