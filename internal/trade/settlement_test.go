package trade

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/model"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func basePosition(amount string) model.Position {
	return model.Position{ID: 1, UserID: 1, CurrencyID: 1, Amount: dec(amount)}
}

func assetPosition(amount string) *model.Position {
	return &model.Position{ID: 2, UserID: 1, CurrencyID: 7, Amount: dec(amount)}
}

func TestPlanBuyCreatesMissingPosition(t *testing.T) {
	// The registration scenario: 1000 seeded, buy 200 at spot 50.
	plan, err := planBuy(basePosition("1000"), nil, dec("50"), dec("200"))
	require.NoError(t, err)

	assert.True(t, plan.createAsset)
	assert.False(t, plan.deleteAsset)
	assert.True(t, plan.assetAmount.Equal(dec("4")), "asset amount: %s", plan.assetAmount)
	assert.True(t, plan.baseAmount.Equal(dec("800")), "base amount: %s", plan.baseAmount)
}

func TestPlanBuyAddsToExistingPosition(t *testing.T) {
	plan, err := planBuy(basePosition("1000"), assetPosition("1.5"), dec("50"), dec("200"))
	require.NoError(t, err)

	assert.False(t, plan.createAsset)
	assert.True(t, plan.assetAmount.Equal(dec("5.5")))
	assert.True(t, plan.baseAmount.Equal(dec("800")))
}

func TestPlanBuyWholeBalance(t *testing.T) {
	plan, err := planBuy(basePosition("200"), nil, dec("50"), dec("200"))
	require.NoError(t, err)

	assert.True(t, plan.baseAmount.Equal(decimal.Zero))
}

func TestPlanBuyInsufficientFunds(t *testing.T) {
	_, err := planBuy(basePosition("199.99"), nil, dec("50"), dec("200"))

	require.Error(t, err)
	assert.Equal(t, apperror.KindInsufficientFunds, apperror.KindOf(err))
}

func TestPlanSellDecrementsPosition(t *testing.T) {
	plan, err := planSell(basePosition("800"), assetPosition("10"), dec("50"), dec("198"))
	require.NoError(t, err)

	assert.False(t, plan.deleteAsset)
	assert.True(t, plan.assetAmount.Equal(dec("6.04")), "asset amount: %s", plan.assetAmount)
	assert.True(t, plan.baseAmount.Equal(dec("998")))
}

func TestPlanSellClosesDustPosition(t *testing.T) {
	// Holding 4 at spot 50, selling 198 leaves 0.04, under the dust
	// threshold, so the position row goes away entirely.
	plan, err := planSell(basePosition("800"), assetPosition("4"), dec("50"), dec("198"))
	require.NoError(t, err)

	assert.True(t, plan.deleteAsset)
	assert.True(t, plan.baseAmount.Equal(dec("998")))
}

func TestPlanSellKeepsExactThresholdHolding(t *testing.T) {
	// Remaining holding of exactly 2 is not dust: the check is strict.
	plan, err := planSell(basePosition("800"), assetPosition("4"), dec("50"), dec("100"))
	require.NoError(t, err)

	assert.False(t, plan.deleteAsset)
	assert.True(t, plan.assetAmount.Equal(dec("2")))
}

func TestPlanSellWholeHolding(t *testing.T) {
	plan, err := planSell(basePosition("800"), assetPosition("4"), dec("50"), dec("200"))
	require.NoError(t, err)

	assert.True(t, plan.deleteAsset)
	assert.True(t, plan.baseAmount.Equal(dec("1000")))
}

func TestPlanSellWithoutPosition(t *testing.T) {
	_, err := planSell(basePosition("800"), nil, dec("50"), dec("198"))

	require.Error(t, err)
	assert.Equal(t, apperror.KindInsufficientHoldings, apperror.KindOf(err))
}

func TestPlanSellInsufficientHoldings(t *testing.T) {
	_, err := planSell(basePosition("800"), assetPosition("3.95"), dec("50"), dec("198"))

	require.Error(t, err)
	assert.Equal(t, apperror.KindInsufficientHoldings, apperror.KindOf(err))
}

func TestBuySellCycleConservesValue(t *testing.T) {
	// Repeated buy/sell at the same price must round-trip without
	// drift, which is the point of decimal arithmetic here.
	base := basePosition("1000")
	spot := dec("3.17")

	buyPlan, err := planBuy(base, nil, spot, dec("317"))
	require.NoError(t, err)

	holding := model.Position{ID: 2, UserID: 1, CurrencyID: 7, Amount: buyPlan.assetAmount}
	base.Amount = buyPlan.baseAmount

	sellPlan, err := planSell(base, &holding, spot, dec("317"))
	require.NoError(t, err)

	assert.True(t, sellPlan.baseAmount.Equal(dec("1000")), "base amount: %s", sellPlan.baseAmount)
	assert.True(t, sellPlan.deleteAsset)
}
