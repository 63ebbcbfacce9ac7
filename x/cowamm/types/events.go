package types

// Event types for the cowamm module
const (
	EventTypeOrderGenerated    = "cowamm_order_generated"
	EventTypeOrderCommitted    = "cowamm_order_committed"
	EventTypeCommitmentCleared = "cowamm_commitment_cleared"

	AttributeKeyPoolID     = "pool_id"
	AttributeKeyPeriod     = "period"
	AttributeKeySellToken  = "sell_token"
	AttributeKeyBuyToken   = "buy_token"
	AttributeKeySellAmount = "sell_amount"
	AttributeKeyBuyAmount  = "buy_amount"
	AttributeKeyOrderHash  = "order_hash"
)
