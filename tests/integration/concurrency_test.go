package integration

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentApprovals_SingleWinner fires many concurrent approvals of
// the same request. The conditional status update must let exactly one
// through; everyone else gets a state transition conflict and the wallet is
// debited exactly once.
func TestConcurrentApprovals_SingleWinner(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchantID := app.newWallet(t, 1000)
	merchantToken := app.token(t, merchantID, domain.RoleMerchant)
	adminToken := app.token(t, uuid.New(), domain.RoleAdmin)

	submitBody := fmt.Sprintf(`{
		"action_type": "WithdrawFunds",
		"target_entity_type": "wallet",
		"target_entity_id": "%s",
		"payload_after": {"amount": "400"}
	}`, merchantID)
	status, body := app.do(t, "POST", "/api/v1/actions", merchantToken, submitBody)
	require.Equal(t, http.StatusCreated, status)
	requestID := data(t, body)["id"].(string)

	concurrency := 20
	var wg sync.WaitGroup
	var approved atomic.Int64
	var conflicts atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest("POST", app.server.URL+"/api/v1/actions/"+requestID+"/approve", nil)
			req.Header.Set("Authorization", "Bearer "+adminToken)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusOK:
				approved.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), approved.Load(), "exactly one approval must win")
	assert.Equal(t, int64(concurrency-1), conflicts.Load(), "all losers must see a conflict")

	// The wallet was debited exactly once
	status, body = app.do(t, "GET", "/api/v1/wallets/balance", merchantToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "600", data(t, body)["balance"])

	kind := domain.EntryKindWithdraw
	_, total, err := app.ledgerRepo.ListByOwner(context.Background(), ports.LedgerListParams{
		OwnerID:  merchantID,
		Kind:     &kind,
		Page:     1,
		PageSize: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "exactly one withdrawal entry")
}

// TestConcurrentWithdrawals_NeverNegative approves ten 100-unit withdrawal
// requests against a 500-unit wallet concurrently. Pessimistic locking must
// serialize the debits: exactly five succeed and the balance lands on zero.
func TestConcurrentWithdrawals_NeverNegative(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchantID := app.newWallet(t, 500)
	merchantToken := app.token(t, merchantID, domain.RoleMerchant)
	adminToken := app.token(t, uuid.New(), domain.RoleAdmin)

	concurrency := 10
	requestIDs := make([]string, concurrency)
	for i := 0; i < concurrency; i++ {
		submitBody := fmt.Sprintf(`{
			"action_type": "WithdrawFunds",
			"target_entity_type": "wallet",
			"target_entity_id": "%s",
			"payload_after": {"amount": "100", "note": "batch %d"}
		}`, merchantID, i)
		status, body := app.do(t, "POST", "/api/v1/actions", merchantToken, submitBody)
		require.Equal(t, http.StatusCreated, status)
		requestIDs[i] = data(t, body)["id"].(string)
	}

	var wg sync.WaitGroup
	var succeeded atomic.Int64
	var insufficient atomic.Int64

	for _, id := range requestIDs {
		wg.Add(1)
		go func(requestID string) {
			defer wg.Done()
			req, _ := http.NewRequest("POST", app.server.URL+"/api/v1/actions/"+requestID+"/approve", nil)
			req.Header.Set("Authorization", "Bearer "+adminToken)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusOK:
				succeeded.Add(1)
			case http.StatusPaymentRequired:
				insufficient.Add(1)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int64(5), succeeded.Load(), "exactly 500/100 approvals can succeed")
	assert.Equal(t, int64(5), insufficient.Load())

	status, body := app.do(t, "GET", "/api/v1/wallets/balance", merchantToken, "")
	require.Equal(t, http.StatusOK, status)
	balance := data(t, body)["balance"].(string)
	assert.Equal(t, "0", balance, "balance must be exactly drained, never negative")

	// Failed approvals rolled back fully: their requests are pending again
	status, body = app.do(t, "GET", "/api/v1/actions/pending", adminToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(5), data(t, body)["total"])

	// The ledger agrees with the stored balance
	sum, err := app.ledgerRepo.SumByOwner(context.Background(), merchantID, nil)
	require.NoError(t, err)
	assert.True(t, sum.IsZero(), "ledger sum %s != 0", sum)
}

// TestConcurrentCredits verifies credits are serialized by the wallet lock
// and every one of them lands both on the balance and in the ledger.
func TestConcurrentCredits(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchantID := app.newWallet(t, 0)
	merchantToken := app.token(t, merchantID, domain.RoleMerchant)
	adminToken := app.token(t, uuid.New(), domain.RoleAdmin)

	concurrency := 15
	var wg sync.WaitGroup
	var succeeded atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"owner_id":"%s","amount":"10","description":"credit %d"}`, merchantID, idx)
			req, _ := http.NewRequest("POST", app.server.URL+"/api/v1/wallets/credit", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+adminToken)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusCreated {
				succeeded.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(concurrency), succeeded.Load())

	status, body := app.do(t, "GET", "/api/v1/wallets/balance", merchantToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "150", data(t, body)["balance"])

	sum, err := app.ledgerRepo.SumByOwner(context.Background(), merchantID, nil)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(150)), "ledger sum %s != balance 150", sum)
}
