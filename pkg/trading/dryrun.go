package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dexhook/signal-gateway/pkg/network"
)

// DryRunFactory builds clients that validate and log orders without touching
// an exchange. Used in development and as the default until a real client
// implementation is wired in.
type DryRunFactory struct {
	logger *zap.Logger
}

// NewDryRunFactory creates a DryRunFactory.
func NewDryRunFactory(logger *zap.Logger) *DryRunFactory {
	return &DryRunFactory{logger: logger}
}

// BuildClient validates the credential shape and returns a dry-run client.
// The mnemonic itself is never logged.
func (f *DryRunFactory) BuildClient(_ context.Context, net network.ID, mnemonic []byte, address string) (Client, error) {
	if len(mnemonic) == 0 {
		return nil, fmt.Errorf("empty mnemonic")
	}
	if !network.Known(net) {
		return nil, fmt.Errorf("unsupported network %s", net)
	}
	return &dryRunClient{
		network: net,
		address: address,
		logger:  f.logger,
	}, nil
}

type dryRunClient struct {
	network network.ID
	address string
	logger  *zap.Logger
}

func (c *dryRunClient) PlaceOrder(ctx context.Context, body *structpb.Struct) (*DispatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order, err := OrderFromBody(body)
	if err != nil {
		return nil, err
	}

	res := &DispatchResult{
		OrderID:      "dry-" + uuid.NewString(),
		DispatchedAt: time.Now(),
	}

	c.logger.Info("Dry-run order accepted",
		zap.String("order_id", res.OrderID),
		zap.String("network", c.network.String()),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.String("size", order.Size.String()),
	)

	return res, nil
}
