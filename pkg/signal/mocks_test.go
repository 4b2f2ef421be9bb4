package signal

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dexhook/signal-gateway/pkg/credential"
	"github.com/dexhook/signal-gateway/pkg/network"
	"github.com/dexhook/signal-gateway/pkg/trading"
	"github.com/dexhook/signal-gateway/pkg/user"
	"github.com/dexhook/signal-gateway/pkg/webhook"
)

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, webhookUUID, presentedSecret string) webhook.AuthResult
	Calls            int
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, webhookUUID, presentedSecret string) webhook.AuthResult {
	m.Calls++
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, webhookUUID, presentedSecret)
	}
	return webhook.AuthResult{Result: webhook.ResultUnknown}
}

// MockResolver is a mock implementation of Resolver
type MockResolver struct {
	ResolveFunc func(usr *user.User, requested *network.ID) (*credential.Resolved, error)
	Calls       int
}

func (m *MockResolver) Resolve(usr *user.User, requested *network.ID) (*credential.Resolved, error) {
	m.Calls++
	if m.ResolveFunc != nil {
		return m.ResolveFunc(usr, requested)
	}
	return nil, credential.ErrNotFound
}

// MockClient is a mock implementation of trading.Client
type MockClient struct {
	PlaceOrderFunc func(ctx context.Context, body *structpb.Struct) (*trading.DispatchResult, error)
	Calls          int
}

func (m *MockClient) PlaceOrder(ctx context.Context, body *structpb.Struct) (*trading.DispatchResult, error) {
	m.Calls++
	if m.PlaceOrderFunc != nil {
		return m.PlaceOrderFunc(ctx, body)
	}
	return &trading.DispatchResult{OrderID: "order-1"}, nil
}

// MockFactory is a mock implementation of trading.ClientFactory
type MockFactory struct {
	Client     *MockClient
	BuildErr   error
	BuildCalls int
}

func (m *MockFactory) BuildClient(_ context.Context, _ network.ID, _ []byte, _ string) (trading.Client, error) {
	m.BuildCalls++
	if m.BuildErr != nil {
		return nil, m.BuildErr
	}
	return m.Client, nil
}
