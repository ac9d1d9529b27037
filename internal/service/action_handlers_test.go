package service

import (
	"context"
	"encoding/json"
	"testing"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"
	"storefront-core/internal/core/ports/mocks"
	"storefront-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	catalog := mocks.NewMockCatalogService(ctrl)
	walletSvc := mocks.NewMockWalletService(ctrl)

	reg := NewRegistry(
		NewUpdatePriceHandler(catalog, zerolog.Nop()),
		NewWithdrawFundsHandler(walletSvc, zerolog.Nop()),
		NewProposeCategoryHandler(catalog, zerolog.Nop()),
	)

	h, ok := reg.Handler(domain.ActionTypeWithdrawFunds)
	require.True(t, ok)
	assert.Equal(t, domain.ActionTypeWithdrawFunds, h.Type())

	_, ok = reg.Handler(domain.ActionType("Nope"))
	assert.False(t, ok)

	assert.Equal(t, []domain.ActionType{
		domain.ActionTypeProposeCategory,
		domain.ActionTypeUpdatePrice,
		domain.ActionTypeWithdrawFunds,
	}, reg.Types())
}

func TestRoleAuthorizer_CanResolve(t *testing.T) {
	a := NewRoleAuthorizer()
	assert.True(t, a.CanResolve(domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}))
	assert.False(t, a.CanResolve(domain.Actor{ID: uuid.New(), Role: domain.RoleMerchant}))
}

// ==================== UpdatePrice ====================

func TestUpdatePriceHandler_Validate(t *testing.T) {
	h := NewUpdatePriceHandler(nil, zerolog.Nop())

	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"valid", `{"product_id":"p1","price":"19.99"}`, ""},
		{"malformed json", `{not json`, "ACT_001"},
		{"missing product", `{"price":"10"}`, "ACT_001"},
		{"zero price", `{"product_id":"p1","price":"0"}`, "ACT_001"},
		{"negative price", `{"product_id":"p1","price":"-3"}`, "ACT_001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Validate(json.RawMessage(tt.payload))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantErr, appErr.Code)
		})
	}
}

func TestUpdatePriceHandler_Snapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	catalog := mocks.NewMockCatalogService(ctrl)
	h := NewUpdatePriceHandler(catalog, zerolog.Nop())

	ctx := context.Background()
	catalog.EXPECT().GetProductPrice(ctx, "p1").Return(decimal.RequireFromString("15.00"), nil)

	before, err := h.Snapshot(ctx, ports.SubmitInput{TargetEntityID: "p1"})
	require.NoError(t, err)

	var p domain.PricePayload
	require.NoError(t, json.Unmarshal(before, &p))
	assert.Equal(t, "p1", p.ProductID)
	assert.True(t, decimal.RequireFromString("15.00").Equal(p.Price))
}

func TestUpdatePriceHandler_Apply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	catalog := mocks.NewMockCatalogService(ctrl)
	h := NewUpdatePriceHandler(catalog, zerolog.Nop())

	ctx := context.Background()
	req := &domain.ActionRequest{
		ID:           uuid.New(),
		PayloadAfter: json.RawMessage(`{"product_id":"p1","price":"19.99"}`),
	}

	catalog.EXPECT().SetProductPrice(ctx, "p1", decimalEq{decimal.RequireFromString("19.99")}).Return(nil)

	effect, err := h.Apply(ctx, nil, req)
	require.NoError(t, err)
	require.NotNil(t, effect)
	assert.Contains(t, effect.Summary, "p1")
	assert.Nil(t, effect.Entry)
}

// ==================== WithdrawFunds ====================

func TestWithdrawFundsHandler_Validate(t *testing.T) {
	h := NewWithdrawFundsHandler(nil, zerolog.Nop())

	err := h.Validate(json.RawMessage(`{"amount":"100"}`))
	assert.NoError(t, err)

	var appErr *apperror.AppError
	err = h.Validate(json.RawMessage(`{"amount":"0"}`))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_001", appErr.Code)

	err = h.Validate(json.RawMessage(`{"amount":"-10"}`))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_001", appErr.Code)

	err = h.Validate(json.RawMessage(`oops`))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ACT_001", appErr.Code)
}

func TestWithdrawFundsHandler_Apply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	walletSvc := mocks.NewMockWalletService(ctrl)
	h := NewWithdrawFundsHandler(walletSvc, zerolog.Nop())

	ctx := context.Background()
	requesterID := uuid.New()
	tx := &mockTx{}
	req := &domain.ActionRequest{
		ID:           uuid.New(),
		RequesterID:  requesterID,
		PayloadAfter: json.RawMessage(`{"amount":"100","note":"monthly payout"}`),
	}
	entry := &domain.LedgerEntry{ID: uuid.New(), OwnerID: requesterID, Amount: decimal.NewFromInt(-100)}

	walletSvc.EXPECT().DebitInTx(ctx, tx, requesterID, decimalEq{decimal.NewFromInt(100)},
		domain.EntryKindWithdraw, gomock.Any(), false).Return(entry, nil)

	effect, err := h.Apply(ctx, tx, req)
	require.NoError(t, err)
	require.NotNil(t, effect)
	assert.Equal(t, entry, effect.Entry)
}

func TestWithdrawFundsHandler_Apply_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	walletSvc := mocks.NewMockWalletService(ctrl)
	h := NewWithdrawFundsHandler(walletSvc, zerolog.Nop())

	ctx := context.Background()
	tx := &mockTx{}
	req := &domain.ActionRequest{
		ID:           uuid.New(),
		RequesterID:  uuid.New(),
		PayloadAfter: json.RawMessage(`{"amount":"100"}`),
	}

	walletSvc.EXPECT().DebitInTx(ctx, tx, req.RequesterID, gomock.Any(),
		domain.EntryKindWithdraw, gomock.Any(), false).Return(nil, apperror.ErrInsufficientFunds())

	_, err := h.Apply(ctx, tx, req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_002", appErr.Code)
}

// ==================== ProposeCategory ====================

func TestProposeCategoryHandler_Validate(t *testing.T) {
	h := NewProposeCategoryHandler(nil, zerolog.Nop())

	assert.NoError(t, h.Validate(json.RawMessage(`{"name":"Shoes"}`)))

	var appErr *apperror.AppError
	err := h.Validate(json.RawMessage(`{"name":""}`))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ACT_001", appErr.Code)
}

func TestProposeCategoryHandler_Apply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	catalog := mocks.NewMockCatalogService(ctrl)
	h := NewProposeCategoryHandler(catalog, zerolog.Nop())

	ctx := context.Background()
	req := &domain.ActionRequest{
		ID:           uuid.New(),
		PayloadAfter: json.RawMessage(`{"name":"Shoes"}`),
	}

	catalog.EXPECT().CreateCategory(ctx, domain.CategoryPayload{Name: "Shoes"}).Return(nil)

	effect, err := h.Apply(ctx, nil, req)
	require.NoError(t, err)
	assert.Contains(t, effect.Summary, "Shoes")
}
