// Package trading defines the collaborator boundary to the exchange trading
// client. The gateway's only obligation is supplying correct, decrypted
// inputs; clients own network connections, signing, and retry policy.
package trading

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dexhook/signal-gateway/pkg/network"
)

// Client places orders on one network with one wallet's signing credential.
type Client interface {
	// PlaceOrder submits the signal body to the exchange. The body is
	// opaque to the gateway beyond the fields already stripped from it.
	PlaceOrder(ctx context.Context, body *structpb.Struct) (*DispatchResult, error)
}

// ClientFactory builds a ready-to-sign trading client from decrypted
// credential material.
type ClientFactory interface {
	BuildClient(ctx context.Context, net network.ID, mnemonic []byte, address string) (Client, error)
}

// DispatchResult records a completed handoff to the exchange.
type DispatchResult struct {
	OrderID      string
	DispatchedAt time.Time
}

// IsDuplicateSubmission reports whether the trading client rejected the
// order as already submitted. The gateway never re-dispatches on timeout,
// but a client that detects its own duplicate surfaces it as AlreadyExists.
func IsDuplicateSubmission(err error) bool {
	if st, ok := status.FromError(err); ok {
		return st.Code() == codes.AlreadyExists
	}
	return false
}
