package onboarding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/dexhook/signal-gateway/pkg/app/errors"
	"github.com/dexhook/signal-gateway/pkg/network"
	"github.com/dexhook/signal-gateway/pkg/user"
	"github.com/dexhook/signal-gateway/pkg/userstore"
)

const testWallet = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

// MockStore is a mock implementation of Store
type MockStore struct {
	CreateUserFunc          func(ctx context.Context, usr *user.User) error
	UserExistsFunc          func(ctx context.Context, walletAddress string) (bool, error)
	UpdateWebhookSecretFunc func(ctx context.Context, walletAddress, encryptedSecret string) error
	SetLegacyMnemonicFunc   func(ctx context.Context, walletAddress string, id network.ID, encryptedMnemonic string) error
	SetUnifiedMnemonicFunc  func(ctx context.Context, walletAddress, dydxAddress, encryptedMnemonic string) error
	SetNetworkIDFunc        func(ctx context.Context, walletAddress string, id network.ID) error
	ClearCredentialsFunc    func(ctx context.Context, walletAddress string) error
}

func (m *MockStore) CreateUser(ctx context.Context, usr *user.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, usr)
	}
	return nil
}

func (m *MockStore) UserExists(ctx context.Context, walletAddress string) (bool, error) {
	if m.UserExistsFunc != nil {
		return m.UserExistsFunc(ctx, walletAddress)
	}
	return false, nil
}

func (m *MockStore) UpdateWebhookSecret(ctx context.Context, walletAddress, encryptedSecret string) error {
	if m.UpdateWebhookSecretFunc != nil {
		return m.UpdateWebhookSecretFunc(ctx, walletAddress, encryptedSecret)
	}
	return nil
}

func (m *MockStore) SetLegacyMnemonic(ctx context.Context, walletAddress string, id network.ID, encryptedMnemonic string) error {
	if m.SetLegacyMnemonicFunc != nil {
		return m.SetLegacyMnemonicFunc(ctx, walletAddress, id, encryptedMnemonic)
	}
	return nil
}

func (m *MockStore) SetUnifiedMnemonic(ctx context.Context, walletAddress, dydxAddress, encryptedMnemonic string) error {
	if m.SetUnifiedMnemonicFunc != nil {
		return m.SetUnifiedMnemonicFunc(ctx, walletAddress, dydxAddress, encryptedMnemonic)
	}
	return nil
}

func (m *MockStore) SetNetworkID(ctx context.Context, walletAddress string, id network.ID) error {
	if m.SetNetworkIDFunc != nil {
		return m.SetNetworkIDFunc(ctx, walletAddress, id)
	}
	return nil
}

func (m *MockStore) ClearCredentials(ctx context.Context, walletAddress string) error {
	if m.ClearCredentialsFunc != nil {
		return m.ClearCredentialsFunc(ctx, walletAddress)
	}
	return nil
}

// markCipher encrypts by prefixing, so tests can assert ciphertext reached
// the store without real key material.
type markCipher struct{}

func (markCipher) Encrypt(plaintext []byte) (string, error) {
	return "enc:" + string(plaintext), nil
}

func (markCipher) Decrypt(ciphertext string) ([]byte, error) {
	return []byte(strings.TrimPrefix(ciphertext, "enc:")), nil
}

func (markCipher) SecretDigest(secret []byte) []byte { return secret }

func newTestService(store Store) Service {
	return NewService(store, markCipher{}, zap.NewNop())
}

func TestOnboard_Success(t *testing.T) {
	var created *user.User
	store := &MockStore{
		CreateUserFunc: func(_ context.Context, usr *user.User) error {
			created = usr
			return nil
		},
	}
	svc := newTestService(store)

	resp, err := svc.Onboard(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("Onboard() failed: %v", err)
	}
	if created == nil {
		t.Fatal("user row was not persisted")
	}

	if _, err := uuid.Parse(resp.WebhookUUID); err != nil {
		t.Fatalf("webhook uuid is not a valid UUID: %v", err)
	}
	if resp.WebhookSecret == "" {
		t.Fatal("plaintext secret missing from the one-time response")
	}
	if created.EncryptedWebhookSecret != "enc:"+resp.WebhookSecret {
		t.Fatal("stored secret is not the ciphertext of the returned secret")
	}
	if created.HasUnifiedMnemonic() || created.HasLegacyMnemonic(network.Testnet) {
		t.Fatal("new user must start without trading credentials")
	}
}

func TestOnboard_SecretsAreUnique(t *testing.T) {
	svc := newTestService(&MockStore{})

	r1, err := svc.Onboard(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("Onboard() failed: %v", err)
	}
	r2, err := svc.Onboard(context.Background(), "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	if err != nil {
		t.Fatalf("Onboard() failed: %v", err)
	}

	if r1.WebhookSecret == r2.WebhookSecret {
		t.Fatal("two onboardings produced the same secret")
	}
	if r1.WebhookUUID == r2.WebhookUUID {
		t.Fatal("two onboardings produced the same webhook uuid")
	}
}

func TestOnboard_AlreadyOnboarded(t *testing.T) {
	store := &MockStore{
		UserExistsFunc: func(_ context.Context, _ string) (bool, error) { return true, nil },
	}
	svc := newTestService(store)

	_, err := svc.Onboard(context.Background(), testWallet)
	if !errors.Is(err, ErrAlreadyOnboarded) {
		t.Fatalf("expected ErrAlreadyOnboarded, got %v", err)
	}
	if !apperrors.Is(err, apperrors.CategoryDataConflict) {
		t.Fatalf("expected CategoryDataConflict, got %v", err)
	}
}

func TestOnboard_InvalidWalletAddress(t *testing.T) {
	svc := newTestService(&MockStore{})

	for _, addr := range []string{"", "0x123", "not-an-address", "dydx1qqq"} {
		_, err := svc.Onboard(context.Background(), addr)
		if !errors.Is(err, ErrInvalidWalletAddress) {
			t.Fatalf("address %q: expected ErrInvalidWalletAddress, got %v", addr, err)
		}
	}
}

func TestRotateWebhookSecret(t *testing.T) {
	var stored string
	store := &MockStore{
		UpdateWebhookSecretFunc: func(_ context.Context, _, encryptedSecret string) error {
			stored = encryptedSecret
			return nil
		},
	}
	svc := newTestService(store)

	resp, err := svc.RotateWebhookSecret(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("RotateWebhookSecret() failed: %v", err)
	}
	if stored != "enc:"+resp.WebhookSecret {
		t.Fatal("stored ciphertext does not match the returned secret")
	}
	if resp.WebhookUUID != "" {
		t.Fatal("rotation must not mint a new webhook uuid")
	}
}

func TestRotateWebhookSecret_NotOnboarded(t *testing.T) {
	store := &MockStore{
		UpdateWebhookSecretFunc: func(_ context.Context, _, _ string) error {
			return userstore.ErrUserNotFound
		},
	}
	svc := newTestService(store)

	_, err := svc.RotateWebhookSecret(context.Background(), testWallet)
	if !apperrors.Is(err, apperrors.CategoryResourceNotFound) {
		t.Fatalf("expected CategoryResourceNotFound, got %v", err)
	}
}

func TestImportLegacyMnemonic(t *testing.T) {
	var gotNetwork network.ID
	var gotCiphertext string
	store := &MockStore{
		SetLegacyMnemonicFunc: func(_ context.Context, _ string, id network.ID, encryptedMnemonic string) error {
			gotNetwork = id
			gotCiphertext = encryptedMnemonic
			return nil
		},
	}
	svc := newTestService(store)

	err := svc.ImportLegacyMnemonic(context.Background(), testWallet, network.Mainnet, "word1 word2")
	if err != nil {
		t.Fatalf("ImportLegacyMnemonic() failed: %v", err)
	}
	if gotNetwork != network.Mainnet {
		t.Fatalf("expected mainnet, got %v", gotNetwork)
	}
	if gotCiphertext != "enc:word1 word2" {
		t.Fatal("mnemonic was not encrypted before storage")
	}
}

func TestImportLegacyMnemonic_UnsupportedNetwork(t *testing.T) {
	svc := newTestService(&MockStore{})

	err := svc.ImportLegacyMnemonic(context.Background(), testWallet, network.ID(5), "words")
	if !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Fatalf("expected CategoryDataError, got %v", err)
	}
}

func TestImportMnemonic_TooLong(t *testing.T) {
	svc := newTestService(&MockStore{})
	long := strings.Repeat("w", maxMnemonicLen+1)

	if err := svc.ImportLegacyMnemonic(context.Background(), testWallet, network.Testnet, long); !errors.Is(err, ErrMnemonicTooLong) {
		t.Fatalf("legacy: expected ErrMnemonicTooLong, got %v", err)
	}
	if err := svc.ImportUnifiedMnemonic(context.Background(), testWallet, "dydx1qqq", long); !errors.Is(err, ErrMnemonicTooLong) {
		t.Fatalf("unified: expected ErrMnemonicTooLong, got %v", err)
	}
}

func TestImportUnifiedMnemonic(t *testing.T) {
	var gotAddress, gotCiphertext string
	store := &MockStore{
		SetUnifiedMnemonicFunc: func(_ context.Context, _, dydxAddress, encryptedMnemonic string) error {
			gotAddress = dydxAddress
			gotCiphertext = encryptedMnemonic
			return nil
		},
	}
	svc := newTestService(store)

	err := svc.ImportUnifiedMnemonic(context.Background(), testWallet, "dydx1qqq", "word1 word2")
	if err != nil {
		t.Fatalf("ImportUnifiedMnemonic() failed: %v", err)
	}
	// The chain address is stored as presented, no derivation or checks.
	if gotAddress != "dydx1qqq" {
		t.Fatalf("chain address altered: %q", gotAddress)
	}
	if gotCiphertext != "enc:word1 word2" {
		t.Fatal("mnemonic was not encrypted before storage")
	}
}

func TestImportUnifiedMnemonic_AddressTooLong(t *testing.T) {
	svc := newTestService(&MockStore{})

	err := svc.ImportUnifiedMnemonic(context.Background(), testWallet, strings.Repeat("d", maxDydxAddressLen+1), "words")
	if !errors.Is(err, ErrAddressTooLong) {
		t.Fatalf("expected ErrAddressTooLong, got %v", err)
	}
}

func TestSetNetwork(t *testing.T) {
	var got network.ID
	store := &MockStore{
		SetNetworkIDFunc: func(_ context.Context, _ string, id network.ID) error {
			got = id
			return nil
		},
	}
	svc := newTestService(store)

	if err := svc.SetNetwork(context.Background(), testWallet, network.Testnet); err != nil {
		t.Fatalf("SetNetwork() failed: %v", err)
	}
	if got != network.Testnet {
		t.Fatalf("expected testnet, got %v", got)
	}

	if err := svc.SetNetwork(context.Background(), testWallet, network.ID(5)); !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Fatalf("expected CategoryDataError for unsupported network, got %v", err)
	}
}

func TestDisable(t *testing.T) {
	cleared := false
	store := &MockStore{
		ClearCredentialsFunc: func(_ context.Context, _ string) error {
			cleared = true
			return nil
		},
	}
	svc := newTestService(store)

	if err := svc.Disable(context.Background(), testWallet); err != nil {
		t.Fatalf("Disable() failed: %v", err)
	}
	if !cleared {
		t.Fatal("credentials were not cleared")
	}
}
