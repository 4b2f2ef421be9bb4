package signal

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/dexhook/signal-gateway/pkg/app/errors"
	"github.com/dexhook/signal-gateway/pkg/credential"
	"github.com/dexhook/signal-gateway/pkg/network"
	"github.com/dexhook/signal-gateway/pkg/trading"
	"github.com/dexhook/signal-gateway/pkg/user"
	"github.com/dexhook/signal-gateway/pkg/vault"
	"github.com/dexhook/signal-gateway/pkg/webhook"
)

const validPayload = `{"secret":"s3cret","symbol":"ETH-USD","side":"buy","size":"0.5"}`

func authOK(usr *user.User) *MockAuthenticator {
	return &MockAuthenticator{
		AuthenticateFunc: func(_ context.Context, _, _ string) webhook.AuthResult {
			return webhook.AuthResult{Result: webhook.ResultAuthenticated, User: usr}
		},
	}
}

func resolveOK() *MockResolver {
	return &MockResolver{
		ResolveFunc: func(_ *user.User, _ *network.ID) (*credential.Resolved, error) {
			return &credential.Resolved{
				Mnemonic: []byte("words"),
				Network:  network.Testnet,
				Source:   credential.SourceUnified,
			}, nil
		},
	}
}

func TestHandleSignal_Dispatched(t *testing.T) {
	usr := &user.User{WalletAddress: "0xabc", WebhookUUID: "uuid-1"}
	client := &MockClient{
		PlaceOrderFunc: func(_ context.Context, body *structpb.Struct) (*trading.DispatchResult, error) {
			if _, ok := body.Fields["secret"]; ok {
				t.Fatal("secret leaked into the dispatched body")
			}
			if body.Fields["symbol"].GetStringValue() != "ETH-USD" {
				t.Fatal("signal body not carried through")
			}
			return &trading.DispatchResult{OrderID: "order-7", DispatchedAt: time.Now()}, nil
		},
	}
	factory := &MockFactory{Client: client}

	svc := NewService(authOK(usr), resolveOK(), factory, zap.NewNop())

	receipt, err := svc.HandleSignal(context.Background(), "uuid-1", []byte(validPayload))
	if err != nil {
		t.Fatalf("HandleSignal() failed: %v", err)
	}
	if receipt.State != StateDispatched {
		t.Fatalf("expected StateDispatched, got %v", receipt.State)
	}
	if receipt.OrderID != "order-7" {
		t.Fatalf("expected order id carried through, got %q", receipt.OrderID)
	}
	if client.Calls != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", client.Calls)
	}
}

func TestHandleSignal_MalformedPayload(t *testing.T) {
	auth := &MockAuthenticator{}
	svc := NewService(auth, &MockResolver{}, &MockFactory{}, zap.NewNop())

	for _, payload := range []string{"not json", `{"symbol":"ETH-USD"}`, `{"secret":""}`} {
		_, err := svc.HandleSignal(context.Background(), "uuid-1", []byte(payload))
		if !apperrors.Is(err, apperrors.CategoryDataError) {
			t.Fatalf("payload %q: expected CategoryDataError, got %v", payload, err)
		}
	}
	if auth.Calls != 0 {
		t.Fatal("authentication must not run for malformed payloads")
	}
}

func TestHandleSignal_AuthFailuresAreIndistinguishable(t *testing.T) {
	results := []webhook.AuthResult{
		{Result: webhook.ResultUnknown},
		{Result: webhook.ResultNotConfigured},
		{Result: webhook.ResultRejected},
	}

	var messages []string
	for _, res := range results {
		res := res
		auth := &MockAuthenticator{
			AuthenticateFunc: func(_ context.Context, _, _ string) webhook.AuthResult { return res },
		}
		resolver := &MockResolver{}
		svc := NewService(auth, resolver, &MockFactory{}, zap.NewNop())

		_, err := svc.HandleSignal(context.Background(), "uuid-1", []byte(validPayload))
		if !apperrors.Is(err, apperrors.CategoryUnauthorized) {
			t.Fatalf("result %v: expected CategoryUnauthorized, got %v", res.Result, err)
		}
		if resolver.Calls != 0 {
			t.Fatalf("result %v: resolver must not run after failed auth", res.Result)
		}

		var svcErr *apperrors.ServiceError
		if !errors.As(err, &svcErr) {
			t.Fatalf("expected ServiceError, got %T", err)
		}
		messages = append(messages, svcErr.Message)
	}

	for _, msg := range messages[1:] {
		if msg != messages[0] {
			t.Fatalf("auth failure messages differ: %q vs %q", messages[0], msg)
		}
	}
}

func TestHandleSignal_AuthInternalError(t *testing.T) {
	auth := &MockAuthenticator{
		AuthenticateFunc: func(_ context.Context, _, _ string) webhook.AuthResult {
			return webhook.AuthResult{Result: webhook.ResultInternalError, Err: errors.New("db down")}
		},
	}
	svc := NewService(auth, &MockResolver{}, &MockFactory{}, zap.NewNop())

	_, err := svc.HandleSignal(context.Background(), "uuid-1", []byte(validPayload))
	if !apperrors.Is(err, apperrors.CategoryGeneralError) {
		t.Fatalf("expected CategoryGeneralError, got %v", err)
	}
}

func TestHandleSignal_CredentialNotFound(t *testing.T) {
	usr := &user.User{WalletAddress: "0xabc"}
	resolver := &MockResolver{
		ResolveFunc: func(_ *user.User, _ *network.ID) (*credential.Resolved, error) {
			return nil, credential.ErrNotFound
		},
	}
	factory := &MockFactory{Client: &MockClient{}}
	svc := NewService(authOK(usr), resolver, factory, zap.NewNop())

	_, err := svc.HandleSignal(context.Background(), "uuid-1", []byte(validPayload))
	if !apperrors.Is(err, apperrors.CategoryResourceNotFound) {
		t.Fatalf("expected CategoryResourceNotFound, got %v", err)
	}
	if factory.BuildCalls != 0 {
		t.Fatal("no client may be built without a credential")
	}
}

func TestHandleSignal_DecryptionFailure(t *testing.T) {
	usr := &user.User{WalletAddress: "0xabc"}
	resolver := &MockResolver{
		ResolveFunc: func(_ *user.User, _ *network.ID) (*credential.Resolved, error) {
			return nil, vault.ErrDecryption
		},
	}
	svc := NewService(authOK(usr), resolver, &MockFactory{}, zap.NewNop())

	_, err := svc.HandleSignal(context.Background(), "uuid-1", []byte(validPayload))
	if !apperrors.Is(err, apperrors.CategoryGeneralError) {
		t.Fatalf("expected CategoryGeneralError, got %v", err)
	}
	if apperrors.Is(err, apperrors.CategoryResourceNotFound) {
		t.Fatal("decryption failure must not look like a missing credential")
	}
}

func TestHandleSignal_NetworkHintPassedToResolver(t *testing.T) {
	usr := &user.User{WalletAddress: "0xabc"}
	var gotRequested *network.ID
	resolver := &MockResolver{
		ResolveFunc: func(_ *user.User, requested *network.ID) (*credential.Resolved, error) {
			gotRequested = requested
			return &credential.Resolved{Mnemonic: []byte("words"), Network: network.Mainnet}, nil
		},
	}
	client := &MockClient{
		PlaceOrderFunc: func(_ context.Context, body *structpb.Struct) (*trading.DispatchResult, error) {
			if _, ok := body.Fields["network"]; ok {
				t.Fatal("network hint leaked into the dispatched body")
			}
			return &trading.DispatchResult{OrderID: "order-1"}, nil
		},
	}
	svc := NewService(authOK(usr), resolver, &MockFactory{Client: client}, zap.NewNop())

	payload := `{"secret":"s3cret","network":"mainnet","symbol":"ETH-USD","side":"buy","size":"1"}`
	if _, err := svc.HandleSignal(context.Background(), "uuid-1", []byte(payload)); err != nil {
		t.Fatalf("HandleSignal() failed: %v", err)
	}
	if gotRequested == nil || *gotRequested != network.Mainnet {
		t.Fatalf("expected mainnet hint, got %v", gotRequested)
	}
}

func TestHandleSignal_NumericNetworkHint(t *testing.T) {
	usr := &user.User{WalletAddress: "0xabc"}
	var gotRequested *network.ID
	resolver := &MockResolver{
		ResolveFunc: func(_ *user.User, requested *network.ID) (*credential.Resolved, error) {
			gotRequested = requested
			return &credential.Resolved{Mnemonic: []byte("words"), Network: network.Mainnet}, nil
		},
	}
	client := &MockClient{
		PlaceOrderFunc: func(_ context.Context, body *structpb.Struct) (*trading.DispatchResult, error) {
			if _, ok := body.Fields["network"]; ok {
				t.Fatal("network hint leaked into the dispatched body")
			}
			return &trading.DispatchResult{OrderID: "order-1"}, nil
		},
	}
	svc := NewService(authOK(usr), resolver, &MockFactory{Client: client}, zap.NewNop())

	payload := `{"secret":"s3cret","network":1,"symbol":"ETH-USD","side":"buy","size":"1"}`
	if _, err := svc.HandleSignal(context.Background(), "uuid-1", []byte(payload)); err != nil {
		t.Fatalf("HandleSignal() failed: %v", err)
	}
	if gotRequested == nil || *gotRequested != network.Mainnet {
		t.Fatalf("expected mainnet hint, got %v", gotRequested)
	}
}

func TestHandleSignal_BadNetworkHintRejected(t *testing.T) {
	usr := &user.User{WalletAddress: "0xabc"}
	resolver := &MockResolver{}

	for _, payload := range []string{
		`{"secret":"s3cret","network":5,"symbol":"ETH-USD","side":"buy","size":"1"}`,
		`{"secret":"s3cret","network":1.5,"symbol":"ETH-USD","side":"buy","size":"1"}`,
		`{"secret":"s3cret","network":true,"symbol":"ETH-USD","side":"buy","size":"1"}`,
		`{"secret":"s3cret","network":{"id":1},"symbol":"ETH-USD","side":"buy","size":"1"}`,
	} {
		svc := NewService(authOK(usr), resolver, &MockFactory{}, zap.NewNop())
		_, err := svc.HandleSignal(context.Background(), "uuid-1", []byte(payload))
		if err == nil {
			t.Fatalf("payload %s: expected error", payload)
		}
		if !apperrors.Is(err, apperrors.CategoryDataError) {
			t.Fatalf("payload %s: expected data error, got %v", payload, err)
		}
	}
	if resolver.Calls != 0 {
		t.Fatal("bad network hint must not reach the resolver")
	}
}

func TestHandleSignal_CanceledBeforeDispatch(t *testing.T) {
	usr := &user.User{WalletAddress: "0xabc"}
	factory := &MockFactory{Client: &MockClient{}}
	svc := NewService(authOK(usr), resolveOK(), factory, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.HandleSignal(ctx, "uuid-1", []byte(validPayload))
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if factory.BuildCalls != 0 || factory.Client.Calls != 0 {
		t.Fatal("canceled signal must not reach the trading client")
	}
}

func TestHandleSignal_DuplicateSubmission(t *testing.T) {
	usr := &user.User{WalletAddress: "0xabc"}
	client := &MockClient{
		PlaceOrderFunc: func(_ context.Context, _ *structpb.Struct) (*trading.DispatchResult, error) {
			return nil, status.Error(codes.AlreadyExists, "duplicate")
		},
	}
	svc := NewService(authOK(usr), resolveOK(), &MockFactory{Client: client}, zap.NewNop())

	_, err := svc.HandleSignal(context.Background(), "uuid-1", []byte(validPayload))
	if !apperrors.Is(err, apperrors.CategoryDataConflict) {
		t.Fatalf("expected CategoryDataConflict, got %v", err)
	}
	if client.Calls != 1 {
		t.Fatalf("expected exactly one dispatch attempt, got %d", client.Calls)
	}
}

func TestHandleSignal_DispatchFailureIsNotRetried(t *testing.T) {
	usr := &user.User{WalletAddress: "0xabc"}
	client := &MockClient{
		PlaceOrderFunc: func(_ context.Context, _ *structpb.Struct) (*trading.DispatchResult, error) {
			return nil, errors.New("exchange unavailable")
		},
	}
	svc := NewService(authOK(usr), resolveOK(), &MockFactory{Client: client}, zap.NewNop())

	_, err := svc.HandleSignal(context.Background(), "uuid-1", []byte(validPayload))
	if !apperrors.Is(err, apperrors.CategoryGeneralError) {
		t.Fatalf("expected CategoryGeneralError, got %v", err)
	}
	if client.Calls != 1 {
		t.Fatalf("expected exactly one dispatch attempt, got %d", client.Calls)
	}
}
