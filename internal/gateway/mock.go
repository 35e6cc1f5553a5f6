package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockClient is a development/testing implementation of Client. It simulates
// Chapa behavior without requiring a provider account.
type MockClient struct {
	logger *zap.Logger
}

// NewMockClient creates a new mock gateway client for development.
func NewMockClient(logger *zap.Logger) *MockClient {
	return &MockClient{logger: logger}
}

// Initiate simulates opening a checkout session and returns mock values.
func (m *MockClient) Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error) {
	reference := fmt.Sprintf("ref_mock_%s", uuid.New().String()[:8])

	m.logger.Info("[MOCK CHAPA] transaction initiated",
		zap.String("tx_ref", params.TxRef),
		zap.String("reference", reference),
		zap.Int64("amount_cents", params.AmountCents),
		zap.String("currency", params.Currency),
		zap.String("email", params.Email),
	)

	return &InitiateResult{
		CheckoutURL: fmt.Sprintf("https://checkout.chapa.test/%s", reference),
		Reference:   reference,
	}, nil
}

// Verify simulates a verification that always reports success.
func (m *MockClient) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	m.logger.Info("[MOCK CHAPA] transaction verified",
		zap.String("reference", reference),
	)
	return &VerifyResult{Status: VerifySuccess, TransactionID: reference}, nil
}
