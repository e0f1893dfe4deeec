package engine

import "github.com/Veraticus/the-sleeper-must-awaken/internal/model"

// Classify partitions fetched confirmation items into an auto-resolve
// bucket and a manual-review bucket according to the account policy.
// Every item lands in exactly one bucket and fetch order is preserved
// within each. Pure function: no side effects, no network.
func Classify(policy model.AccountPolicy, items []model.ConfirmationItem) (auto, manual []model.ConfirmationItem) {
	for _, item := range items {
		switch {
		case item.Type == model.ConfirmationTypeTrade && policy.AutoConfirmTrades:
			auto = append(auto, item)
		case item.Type == model.ConfirmationTypeMarketListing && policy.AutoConfirmMarketTransactions:
			auto = append(auto, item)
		default:
			manual = append(manual, item)
		}
	}
	return auto, manual
}
