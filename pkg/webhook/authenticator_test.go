package webhook

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/dexhook/signal-gateway/pkg/user"
	"github.com/dexhook/signal-gateway/pkg/userstore"
	"github.com/dexhook/signal-gateway/pkg/vault"
)

type fakeStore struct {
	users map[string]*user.User
	err   error
	calls int
}

func (s *fakeStore) GetUser(_ context.Context, opts ...userstore.QueryOption) (*user.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	var q userstore.QueryOptions
	for _, opt := range opts {
		opt(&q)
	}
	if q.WebhookUUID == nil {
		return nil, errors.New("expected webhook uuid lookup")
	}
	usr, ok := s.users[*q.WebhookUUID]
	if !ok {
		return nil, userstore.ErrUserNotFound
	}
	return usr, nil
}

// plainCipher stores secrets with a marker prefix and digests them verbatim.
type plainCipher struct{}

func (plainCipher) Decrypt(ciphertext string) ([]byte, error) {
	if len(ciphertext) < 4 || ciphertext[:4] != "enc:" {
		return nil, vault.ErrDecryption
	}
	return []byte(ciphertext[4:]), nil
}

func (plainCipher) SecretDigest(secret []byte) []byte {
	return append([]byte("digest:"), secret...)
}

func newTestAuthenticator(store Store) *Authenticator {
	return NewAuthenticator(store, plainCipher{}, zap.NewNop())
}

func TestAuthenticate_Success(t *testing.T) {
	usr := &user.User{
		WalletAddress:          "0xabc",
		WebhookUUID:            "uuid-1",
		EncryptedWebhookSecret: "enc:tops3cret",
	}
	a := newTestAuthenticator(&fakeStore{users: map[string]*user.User{"uuid-1": usr}})

	res := a.Authenticate(context.Background(), "uuid-1", "tops3cret")
	if res.Result != ResultAuthenticated {
		t.Fatalf("expected ResultAuthenticated, got %v", res.Result)
	}
	if res.User != usr {
		t.Fatal("authenticated result must carry the user")
	}
}

func TestAuthenticate_UnknownUUID(t *testing.T) {
	a := newTestAuthenticator(&fakeStore{users: map[string]*user.User{}})

	res := a.Authenticate(context.Background(), "nope", "whatever")
	if res.Result != ResultUnknown {
		t.Fatalf("expected ResultUnknown, got %v", res.Result)
	}
	if res.User != nil {
		t.Fatal("non-authenticated result must not carry a user")
	}
}

func TestAuthenticate_NotConfigured(t *testing.T) {
	usr := &user.User{WalletAddress: "0xabc", WebhookUUID: "uuid-1"}
	a := newTestAuthenticator(&fakeStore{users: map[string]*user.User{"uuid-1": usr}})

	res := a.Authenticate(context.Background(), "uuid-1", "whatever")
	if res.Result != ResultNotConfigured {
		t.Fatalf("expected ResultNotConfigured, got %v", res.Result)
	}
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	usr := &user.User{
		WalletAddress:          "0xabc",
		WebhookUUID:            "uuid-1",
		EncryptedWebhookSecret: "enc:tops3cret",
	}
	a := newTestAuthenticator(&fakeStore{users: map[string]*user.User{"uuid-1": usr}})

	for _, presented := range []string{"wrong", "", "tops3cret ", "TOPS3CRET"} {
		res := a.Authenticate(context.Background(), "uuid-1", presented)
		if res.Result != ResultRejected {
			t.Fatalf("secret %q: expected ResultRejected, got %v", presented, res.Result)
		}
		if res.User != nil {
			t.Fatal("rejected result must not carry a user")
		}
	}
}

func TestAuthenticate_CorruptStoredSecret(t *testing.T) {
	usr := &user.User{
		WalletAddress:          "0xabc",
		WebhookUUID:            "uuid-1",
		EncryptedWebhookSecret: "garbage",
	}
	a := newTestAuthenticator(&fakeStore{users: map[string]*user.User{"uuid-1": usr}})

	res := a.Authenticate(context.Background(), "uuid-1", "whatever")
	if res.Result != ResultInternalError {
		t.Fatalf("expected ResultInternalError, got %v", res.Result)
	}
	if !errors.Is(res.Err, vault.ErrDecryption) {
		t.Fatalf("expected vault.ErrDecryption in Err, got %v", res.Err)
	}
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	a := newTestAuthenticator(&fakeStore{err: errors.New("db down")})

	res := a.Authenticate(context.Background(), "uuid-1", "whatever")
	if res.Result != ResultInternalError {
		t.Fatalf("expected ResultInternalError, got %v", res.Result)
	}
}
