package model

// ConfirmationType categorizes a pending confirmation.
type ConfirmationType string

// Confirmation types.
const (
	ConfirmationTypeTrade         ConfirmationType = "trade"
	ConfirmationTypeMarketListing ConfirmationType = "market_listing"
	ConfirmationTypeOther         ConfirmationType = "other"
)

// ConfirmationAction is the user decision applied to a confirmation.
type ConfirmationAction string

// Confirmation actions.
const (
	ActionAccept ConfirmationAction = "accept"
	ActionDeny   ConfirmationAction = "deny"
)

// ConfirmationItem is one pending confirmation as returned by a single
// fetch. Items are immutable snapshots: a later fetch is the authoritative
// current set and may omit or replace any of them, so IDs are only
// meaningful within one batch.
type ConfirmationItem struct {
	ID          string
	Nonce       string
	Type        ConfirmationType
	Headline    string
	Creator     string
	Summary     []string
	Icon        string
	AcceptLabel string
	CancelLabel string
}

// PreparedItem is a confirmation item plus its resolved presentation
// decoration. IconData is nil when the icon could not be resolved; the
// item is still presentable without it.
type PreparedItem struct {
	ConfirmationItem
	IconData []byte
}
