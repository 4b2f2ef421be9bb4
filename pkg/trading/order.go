package trading

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Order is the minimal typed view of a signal body a client needs to submit
// an exchange order. Fields beyond these stay in the raw body.
type Order struct {
	Symbol string
	Side   Side
	Size   decimal.Decimal
	Price  *decimal.Decimal
}

// OrderFromBody extracts the typed order fields from a signal body.
func OrderFromBody(body *structpb.Struct) (*Order, error) {
	if body == nil {
		return nil, fmt.Errorf("empty signal body")
	}
	fields := body.GetFields()

	symbol := fields["symbol"].GetStringValue()
	if symbol == "" {
		return nil, fmt.Errorf("signal body missing symbol")
	}

	side := Side(strings.ToUpper(fields["side"].GetStringValue()))
	if side != SideBuy && side != SideSell {
		return nil, fmt.Errorf("signal body has invalid side %q", fields["side"].GetStringValue())
	}

	size, err := decimalField(fields["size"])
	if err != nil {
		return nil, fmt.Errorf("signal body size: %w", err)
	}
	if size.IsZero() || size.IsNegative() {
		return nil, fmt.Errorf("signal body size must be positive, got %s", size)
	}

	order := &Order{Symbol: symbol, Side: side, Size: size}

	if v, ok := fields["price"]; ok {
		price, err := decimalField(v)
		if err != nil {
			return nil, fmt.Errorf("signal body price: %w", err)
		}
		order.Price = &price
	}

	return order, nil
}

// decimalField accepts both JSON numbers and numeric strings; alert sources
// are inconsistent about which they send.
func decimalField(v *structpb.Value) (decimal.Decimal, error) {
	switch v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(v.GetNumberValue()), nil
	case *structpb.Value_StringValue:
		return decimal.NewFromString(v.GetStringValue())
	default:
		return decimal.Decimal{}, fmt.Errorf("missing or non-numeric value")
	}
}
