package api

// REST request/response types.

// AuctionInfo is the JSON view of one auction record.
type AuctionInfo struct {
	Digest            string `json:"digest"`
	Status            string `json:"status"`
	ConfigID          uint32 `json:"configId"`
	SourceChain       uint16 `json:"sourceChain"`
	TargetChain       uint16 `json:"targetChain"`
	StartSlot         uint64 `json:"startSlot"`
	EndSlot           uint64 `json:"endSlot"`
	AmountIn          uint64 `json:"amountIn"`
	SecurityDeposit   uint64 `json:"securityDeposit"`
	OfferPrice        uint64 `json:"offerPrice"`
	BestOfferToken    string `json:"bestOfferToken"`
	InitialOfferToken string `json:"initialOfferToken"`
	ExecutePenalty    uint64 `json:"executePenalty,omitempty"`
	ExecuteReward     uint64 `json:"executeReward,omitempty"`
	SettledBaseFee    uint64 `json:"settledBaseFee,omitempty"`
}

// PenaltyQuote is the response to a what-if penalty query.
type PenaltyQuote struct {
	Digest     string `json:"digest"`
	Slot       uint64 `json:"slot"`
	Penalty    uint64 `json:"penalty"`
	UserReward uint64 `json:"userReward"`
}

// RouteInfo is one registered endpoint.
type RouteInfo struct {
	Chain   uint16 `json:"chain"`
	Emitter string `json:"emitter"`
	Enabled bool   `json:"enabled"`
}

// OfferRequest submits an initial or improved offer. Message is the
// hex-encoded attested order (initial offers only); Digest selects the
// auction for improvements.
type OfferRequest struct {
	Message    string `json:"message,omitempty"`
	Digest     string `json:"digest,omitempty"`
	OfferPrice uint64 `json:"offerPrice"`
	OfferToken string `json:"offerToken"`
}

// ExecuteRequest triggers execution of an expired auction.
type ExecuteRequest struct {
	Message       string `json:"message"`
	ExecutorToken string `json:"executorToken"`
}

// SettleRequest drives the slow-path settlement flow.
type SettleRequest struct {
	FastMessage string `json:"fastMessage,omitempty"`
	SlowMessage string `json:"slowMessage,omitempty"`
	Digest      string `json:"digest,omitempty"`
	CallerToken string `json:"callerToken,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
