package trade

import (
	"github.com/shopspring/decimal"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/ledger"
	"github.com/dense-analysis/tradewarp/internal/model"
)

// dustThreshold is the remaining holding below which a sold-down
// position is closed instead of being left as a near-zero balance.
var dustThreshold = decimal.NewFromInt(2)

// settlement describes the position mutations one trade must apply.
// Planning is pure; applying it is the transaction's job.
type settlement struct {
	baseAmount  decimal.Decimal
	assetAmount decimal.Decimal
	createAsset bool
	deleteAsset bool
}

// planBuy settles a BUY: debit the base position by usdAmount and add
// usdAmount / spotPrice to the target position, creating it if the
// user holds none of the currency yet.
func planBuy(
	basePosition model.Position,
	assetPosition *model.Position,
	spotPrice decimal.Decimal,
	usdAmount decimal.Decimal,
) (settlement, error) {
	if basePosition.Amount.LessThan(usdAmount) {
		return settlement{}, apperror.InsufficientFunds("not enough " + ledger.BaseCoinName)
	}

	delta := usdAmount.Div(spotPrice)
	plan := settlement{baseAmount: basePosition.Amount.Sub(usdAmount)}

	if assetPosition == nil {
		plan.createAsset = true
		plan.assetAmount = delta
	} else {
		plan.assetAmount = assetPosition.Amount.Add(delta)
	}

	return plan, nil
}

// planSell settles a SELL: credit the base position with usdAmount and
// remove usdAmount / spotPrice from the target position. A remaining
// holding under the dust threshold closes the position entirely.
func planSell(
	basePosition model.Position,
	assetPosition *model.Position,
	spotPrice decimal.Decimal,
	usdAmount decimal.Decimal,
) (settlement, error) {
	delta := usdAmount.Div(spotPrice)

	if assetPosition == nil || assetPosition.Amount.LessThan(delta) {
		return settlement{}, apperror.InsufficientHoldings("can't sell more than you own")
	}

	plan := settlement{baseAmount: basePosition.Amount.Add(usdAmount)}
	remaining := assetPosition.Amount.Sub(delta)

	if remaining.LessThan(dustThreshold) {
		plan.deleteAsset = true
	} else {
		plan.assetAmount = remaining
	}

	return plan, nil
}
