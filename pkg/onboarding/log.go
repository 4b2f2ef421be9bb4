package onboarding

import (
	"context"

	"go.uber.org/zap"

	"github.com/dexhook/signal-gateway/pkg/network"
)

const serviceName = "Onboarding"

type logService struct {
	logger *zap.Logger
	next   Service
}

// NewLog creates a logging decorator around an onboarding service. Secrets
// and mnemonics are never written to the log in either direction.
func NewLog(logger *zap.Logger, next Service) Service {
	return &logService{
		logger: logger,
		next:   next,
	}
}

func (s *logService) Onboard(ctx context.Context, walletAddress string) (*OnboardResponse, error) {
	s.logger.Info("Request received",
		zap.String("service", serviceName),
		zap.String("method", "Onboard"),
		zap.String("wallet_address", walletAddress),
	)
	resp, err := s.next.Onboard(ctx, walletAddress)
	if err != nil {
		s.logger.Error("Request failed",
			zap.String("service", serviceName),
			zap.String("method", "Onboard"),
			zap.Error(err),
		)
	}
	return resp, err
}

func (s *logService) RotateWebhookSecret(ctx context.Context, walletAddress string) (*OnboardResponse, error) {
	s.logger.Info("Request received",
		zap.String("service", serviceName),
		zap.String("method", "RotateWebhookSecret"),
		zap.String("wallet_address", walletAddress),
	)
	resp, err := s.next.RotateWebhookSecret(ctx, walletAddress)
	if err != nil {
		s.logger.Error("Request failed",
			zap.String("service", serviceName),
			zap.String("method", "RotateWebhookSecret"),
			zap.Error(err),
		)
	}
	return resp, err
}

func (s *logService) ImportLegacyMnemonic(ctx context.Context, walletAddress string, id network.ID, mnemonic string) error {
	s.logger.Info("Request received",
		zap.String("service", serviceName),
		zap.String("method", "ImportLegacyMnemonic"),
		zap.String("wallet_address", walletAddress),
		zap.String("network", id.String()),
	)
	err := s.next.ImportLegacyMnemonic(ctx, walletAddress, id, mnemonic)
	if err != nil {
		s.logger.Error("Request failed",
			zap.String("service", serviceName),
			zap.String("method", "ImportLegacyMnemonic"),
			zap.Error(err),
		)
	}
	return err
}

func (s *logService) ImportUnifiedMnemonic(ctx context.Context, walletAddress, dydxAddress, mnemonic string) error {
	s.logger.Info("Request received",
		zap.String("service", serviceName),
		zap.String("method", "ImportUnifiedMnemonic"),
		zap.String("wallet_address", walletAddress),
	)
	err := s.next.ImportUnifiedMnemonic(ctx, walletAddress, dydxAddress, mnemonic)
	if err != nil {
		s.logger.Error("Request failed",
			zap.String("service", serviceName),
			zap.String("method", "ImportUnifiedMnemonic"),
			zap.Error(err),
		)
	}
	return err
}

func (s *logService) SetNetwork(ctx context.Context, walletAddress string, id network.ID) error {
	s.logger.Info("Request received",
		zap.String("service", serviceName),
		zap.String("method", "SetNetwork"),
		zap.String("wallet_address", walletAddress),
		zap.String("network", id.String()),
	)
	err := s.next.SetNetwork(ctx, walletAddress, id)
	if err != nil {
		s.logger.Error("Request failed",
			zap.String("service", serviceName),
			zap.String("method", "SetNetwork"),
			zap.Error(err),
		)
	}
	return err
}

func (s *logService) Disable(ctx context.Context, walletAddress string) error {
	s.logger.Info("Request received",
		zap.String("service", serviceName),
		zap.String("method", "Disable"),
		zap.String("wallet_address", walletAddress),
	)
	err := s.next.Disable(ctx, walletAddress)
	if err != nil {
		s.logger.Error("Request failed",
			zap.String("service", serviceName),
			zap.String("method", "Disable"),
			zap.Error(err),
		)
	}
	return err
}
