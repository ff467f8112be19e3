package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shoplog/internal/config"
	"github.com/roach88/shoplog/internal/ledger"
)

// sellThree places the canonical refund target: alice buys 3 cola for 30
// yuan earning 3 reward points as an OFFICIAL member.
func sellThree(t *testing.T, f *fixture) Receipt {
	t.Helper()
	receipt, err := f.engine.CashSale(f.ctx, "alice", "cola", 3, "")
	require.NoError(t, err)
	require.Equal(t, 30.0, receipt.PaidCash)
	require.Equal(t, 3.0, receipt.RewardPoints)
	return receipt
}

func TestPreviewRefund_Proration(t *testing.T) {
	f := setup(t, officialConfig("alice"))
	f.seedShop(t)
	receipt := sellThree(t, f)

	preview, err := f.engine.PreviewRefund(f.ctx, receipt.OrderID, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, preview.Quantity)
	assert.Equal(t, 0, preview.AlreadyRefunded)
	assert.Equal(t, 2, preview.Refundable)
	assert.InDelta(t, 10.0, preview.RefundCash, 1e-9)
	assert.Equal(t, 0.0, preview.RefundPoints)
	assert.InDelta(t, 3.0, preview.DeductPoints, 1e-9)
	assert.Equal(t, 3.0, preview.CurrentPoints)
	assert.InDelta(t, 0.0, preview.ProjectedPoints, 1e-9)
	assert.False(t, preview.NegativeWarning)
}

func TestRefund_CashIsRecordOnly(t *testing.T) {
	f := setup(t, officialConfig("alice"))
	f.seedShop(t)
	receipt := sellThree(t, f)

	result, err := f.engine.Refund(f.ctx, receipt.OrderID, 1, "changed mind")
	require.NoError(t, err)
	assert.Equal(t, "REF-000003", result.RefundID)
	assert.InDelta(t, 10.0, result.RefundCash, 1e-9)

	snap, err := f.engine.Snapshot(f.ctx)
	require.NoError(t, err)

	// The cash figure lands on the refund row; only the reward claw-back
	// moves the points balance, and no cash balance exists to move.
	require.Len(t, snap.Refunds, 1)
	assert.InDelta(t, 10.0, snap.Refunds[0].RefundCash, 1e-9)
	c, _ := snap.Customer("alice")
	assert.InDelta(t, 0.0, c.Points, 1e-9)
}

func TestRefund_PointsOrderCreditsPointsBack(t *testing.T) {
	f := setup(t, config.Default())
	f.seedShop(t)

	receipt, err := f.engine.PointsSale(f.ctx, "bob", "sticker", 2, "")
	require.NoError(t, err)

	result, err := f.engine.Refund(f.ctx, receipt.OrderID, 1, "")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, result.RefundPoints, 1e-9)
	assert.Equal(t, 0.0, result.DeductPoints)

	snap, err := f.engine.Snapshot(f.ctx)
	require.NoError(t, err)
	c, _ := snap.Customer("bob")
	// 6 - 4 paid + 2 refunded.
	assert.InDelta(t, 4.0, c.Points, 1e-9)
}

func TestRefund_PartialRefundsReconstituteOriginal(t *testing.T) {
	f := setup(t, officialConfig("alice"))
	f.seedShop(t)
	receipt := sellThree(t, f)

	var totalCash, totalDeduct float64
	for i := 0; i < 3; i++ {
		result, err := f.engine.Refund(f.ctx, receipt.OrderID, 1, "")
		require.NoError(t, err)
		totalCash += result.RefundCash
		totalDeduct += result.DeductPoints
	}

	// Proration is against the original order, so three single-unit
	// refunds add back up exactly.
	assert.InDelta(t, 30.0, totalCash, 1e-9)
	assert.InDelta(t, 3.0, totalDeduct, 1e-9)

	// The fourth unit does not exist.
	_, err := f.engine.Refund(f.ctx, receipt.OrderID, 1, "")
	assert.Equal(t, ErrCodeRefundExcess, RejectCodeOf(err))

	// Stock is restored.
	stock, err := f.engine.Stock(f.ctx, "cola")
	require.NoError(t, err)
	assert.Equal(t, 10, stock[0].Available)
}

func TestRefund_WindowExpired(t *testing.T) {
	f := setup(t, officialConfig("alice"))
	f.seedShop(t)
	receipt := sellThree(t, f)

	f.clock.Advance(8 * 24 * time.Hour)

	_, err := f.engine.Refund(f.ctx, receipt.OrderID, 1, "")
	assert.Equal(t, ErrCodeRefundWindow, RejectCodeOf(err))
}

func TestRefund_WindowBoundaryInclusive(t *testing.T) {
	f := setup(t, officialConfig("alice"))
	f.seedShop(t)
	receipt := sellThree(t, f)

	// Exactly seven days old is still inside the window.
	f.clock.Advance(7 * 24 * time.Hour)

	_, err := f.engine.Refund(f.ctx, receipt.OrderID, 1, "")
	assert.NoError(t, err)
}

func TestRefund_ValidationOrder(t *testing.T) {
	f := setup(t, officialConfig("alice"))
	f.seedShop(t)
	receipt := sellThree(t, f)

	// Unknown order beats everything.
	_, err := f.engine.Refund(f.ctx, "CASH-999999", 0, "")
	assert.Equal(t, ErrCodeUnknownOrder, RejectCodeOf(err))

	// An expired order reports the window before the bad quantity.
	f.clock.Advance(8 * 24 * time.Hour)
	_, err = f.engine.Refund(f.ctx, receipt.OrderID, 0, "")
	assert.Equal(t, ErrCodeRefundWindow, RejectCodeOf(err))
}

func TestRefund_NonPositiveQuantity(t *testing.T) {
	f := setup(t, officialConfig("alice"))
	f.seedShop(t)
	receipt := sellThree(t, f)

	_, err := f.engine.Refund(f.ctx, receipt.OrderID, 0, "")
	assert.Equal(t, ErrCodeValidation, RejectCodeOf(err))

	_, err = f.engine.Refund(f.ctx, receipt.OrderID, -1, "")
	assert.Equal(t, ErrCodeValidation, RejectCodeOf(err))
}

func TestRefund_NegativeProjectionNeedsConfirmation(t *testing.T) {
	f := setup(t, officialConfig("alice"))
	f.seedShop(t)
	receipt := sellThree(t, f)

	// Alice spends her reward before refunding, so the claw-back would
	// push her negative.
	_, err := f.engine.PointsSale(f.ctx, "alice", "sticker", 1, "")
	require.NoError(t, err)

	preview, err := f.engine.PreviewRefund(f.ctx, receipt.OrderID, 3)
	require.NoError(t, err)
	require.True(t, preview.NegativeWarning)
	assert.InDelta(t, -2.0, preview.ProjectedPoints, 1e-9)

	// The default confirmer denies.
	_, err = f.engine.Refund(f.ctx, receipt.OrderID, 3, "")
	assert.Equal(t, ErrCodeNotConfirmed, RejectCodeOf(err))

	snap, err := f.engine.Snapshot(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Refunds)
}

func TestRefund_ConfirmedNegativeGoesThrough(t *testing.T) {
	var prompted string
	f := setup(t, officialConfig("alice"), WithConfirmer(func(warning string) bool {
		prompted = warning
		return true
	}))
	f.seedShop(t)
	receipt := sellThree(t, f)

	_, err := f.engine.PointsSale(f.ctx, "alice", "sticker", 1, "")
	require.NoError(t, err)

	result, err := f.engine.Refund(f.ctx, receipt.OrderID, 3, "")
	require.NoError(t, err)
	assert.NotEmpty(t, prompted)
	assert.InDelta(t, -2.0, result.ProjectedPoints, 1e-9)

	snap, err := f.engine.Snapshot(f.ctx)
	require.NoError(t, err)
	c, _ := snap.Customer("alice")
	assert.InDelta(t, -2.0, c.Points, 1e-9)
}

func TestRefund_DebtReportedNotSettled(t *testing.T) {
	f := setup(t, officialConfig("alice"))
	f.seedShop(t)
	require.NoError(t, f.store.PutCustomer(f.ctx, ledger.Customer{ID: "alice", Debt: 12}))
	receipt := sellThree(t, f)

	result, err := f.engine.Refund(f.ctx, receipt.OrderID, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 12.0, result.DebtOutstanding)

	snap, err := f.engine.Snapshot(f.ctx)
	require.NoError(t, err)
	c, _ := snap.Customer("alice")
	assert.Equal(t, 12.0, c.Debt)
}
