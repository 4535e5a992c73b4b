package engine

import (
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
)

// AuctionStatus is the auction state machine. Transitions are monotonic
// and irreversible: NotStarted → Active → Completed → Settled, with
// NotStarted → Settled for the no-auction fallback.
type AuctionStatus uint8

const (
	AuctionNotStarted AuctionStatus = iota
	AuctionActive
	AuctionCompleted
	AuctionSettled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionNotStarted:
		return "not_started"
	case AuctionActive:
		return "active"
	case AuctionCompleted:
		return "completed"
	case AuctionSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// SettlementPath records which of the three terminal fund-flow branches
// settled the auction, for audit.
type SettlementPath uint8

const (
	SettledNone SettlementPath = iota + 1 // slow message arrived, nobody ever bid
	SettledComplete                       // executed fast, closed out by the slow message
)

// Clock is a caller-supplied snapshot of chain time. Slot drives the
// auction phase boundaries; Unix drives order deadlines. The engine
// never reads a wall clock.
type Clock struct {
	Slot uint64
	Unix int64
}

// Auction is the one long-lived mutable record per order digest:
// created by the first successful bid (or directly settled by the
// no-auction path), mutated by subsequent bids and execution, frozen
// once settled.
type Auction struct {
	Digest   messages.Digest `json:"digest"`
	Status   AuctionStatus   `json:"status"`
	ConfigID uint32          `json:"config_id"`

	SourceChain uint16 `json:"source_chain"`
	Sequence    uint64 `json:"sequence"`
	TargetChain uint16 `json:"target_chain"`

	StartSlot       uint64 `json:"start_slot"`
	AmountIn        uint64 `json:"amount_in"`
	SecurityDeposit uint64 `json:"security_deposit"`

	// OfferPrice is the current best (lowest) fee bid.
	OfferPrice        uint64                    `json:"offer_price"`
	BestOfferToken    messages.UniversalAddress `json:"best_offer_token"`
	InitialOfferToken messages.UniversalAddress `json:"initial_offer_token"`

	// Execution outcome, populated when the auction completes.
	ExecutedSlot   uint64 `json:"executed_slot,omitempty"`
	ExecutePenalty uint64 `json:"execute_penalty,omitempty"`
	ExecuteReward  uint64 `json:"execute_reward,omitempty"`

	// Settlement audit trail, populated on the terminal transition.
	SettledPath    SettlementPath `json:"settled_path,omitempty"`
	SettledBaseFee uint64         `json:"settled_base_fee,omitempty"`
}

// EndSlot is the last slot at which bidding is still open.
func (a *Auction) EndSlot(p AuctionParameters) uint64 {
	return a.StartSlot + p.Duration
}

// TotalDeposit is the escrow a bidder posts: fronted amount plus
// security deposit.
func (a *Auction) TotalDeposit() (uint64, error) {
	return checkedAdd(a.AmountIn, a.SecurityDeposit)
}

// WasPenalized reports whether execution happened past the grace
// period.
func (a *Auction) WasPenalized() bool {
	return a.ExecutePenalty > 0 || a.ExecuteReward > 0
}

// PreparedOrderResponse is the transient custody record produced when
// the slow confirmation arrives: the reconciled base fee and the
// reimbursement amount minted into custody, pending whichever
// settlement path runs first. It is consumed (deleted) exactly once.
type PreparedOrderResponse struct {
	Digest      messages.Digest           `json:"digest"`
	SourceChain uint16                    `json:"source_chain"`
	TargetChain uint16                    `json:"target_chain"`
	BaseFee     uint64                    `json:"base_fee"`
	Amount      uint64                    `json:"amount"`
	Redeemer    messages.UniversalAddress `json:"redeemer"`
	Sender      messages.UniversalAddress `json:"sender"`
	PreparedBy  messages.UniversalAddress `json:"prepared_by"`

	// RedeemerMessage carries the order's payload through to the fill
	// emitted by the no-auction settlement path.
	RedeemerMessage []byte `json:"redeemer_message,omitempty"`
}
