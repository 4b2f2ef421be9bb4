package trading

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dexhook/signal-gateway/pkg/network"
)

const (
	ordersPath       = "/v4/orders"
	submitTimeout    = 30 * time.Second
	maxResponseBytes = 1 << 20
)

// IndexerFactory builds clients that submit orders through a network's
// indexer gateway. Endpoint selection comes from the registry; the mnemonic
// stays inside the built client and is wiped from nowhere else.
type IndexerFactory struct {
	registry   network.Registry
	httpClient *http.Client
	logger     *zap.Logger
}

// NewIndexerFactory creates an IndexerFactory over the given registry.
func NewIndexerFactory(registry network.Registry, logger *zap.Logger) *IndexerFactory {
	return &IndexerFactory{
		registry: registry,
		httpClient: &http.Client{
			Timeout: submitTimeout,
		},
		logger: logger,
	}
}

// BuildClient returns a client bound to one network and one credential.
func (f *IndexerFactory) BuildClient(_ context.Context, net network.ID, mnemonic []byte, address string) (Client, error) {
	if len(mnemonic) == 0 {
		return nil, fmt.Errorf("empty mnemonic")
	}
	endpoints, ok := f.registry[net]
	if !ok {
		return nil, fmt.Errorf("no endpoints registered for network %s", net)
	}

	return &indexerClient{
		endpoints:  endpoints,
		network:    net,
		mnemonic:   mnemonic,
		address:    address,
		httpClient: f.httpClient,
		logger:     f.logger,
	}, nil
}

type indexerClient struct {
	endpoints  network.Endpoints
	network    network.ID
	mnemonic   []byte
	address    string
	httpClient *http.Client
	logger     *zap.Logger
}

type orderResponse struct {
	OrderID string `json:"order_id"`
	Error   string `json:"error"`
}

// PlaceOrder submits the order to the indexer gateway. An idempotency key
// derived from the order content lets the gateway detect resubmissions of
// the same signal; such rejections surface as AlreadyExists.
func (c *indexerClient) PlaceOrder(ctx context.Context, body *structpb.Struct) (*DispatchResult, error) {
	order, err := OrderFromBody(body)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{
		"address":  c.address,
		"chain_id": int64(c.network),
		"symbol":   order.Symbol,
		"side":     order.Side,
		"size":     order.Size,
		"price":    order.Price,
	})
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.IndexerURL+ordersPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", c.idempotencyKey(payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read order response: %w", err)
	}

	if resp.StatusCode == http.StatusConflict {
		return nil, status.Error(codes.AlreadyExists, "order already submitted")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("order rejected: status %d", resp.StatusCode)
	}

	var parsed orderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("order rejected: %s", parsed.Error)
	}

	res := &DispatchResult{
		OrderID:      parsed.OrderID,
		DispatchedAt: time.Now(),
	}

	c.logger.Info("Order dispatched",
		zap.String("order_id", res.OrderID),
		zap.String("network", c.network.String()),
		zap.String("symbol", order.Symbol),
	)

	return res, nil
}

// idempotencyKey authenticates the submission and makes retries of the same
// content detectable server side. Keyed with the credential so two users
// submitting identical orders never collide.
func (c *indexerClient) idempotencyKey(payload []byte) string {
	mac := hmac.New(sha256.New, c.mnemonic)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
