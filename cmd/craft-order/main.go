// craft-order builds an attested fast-market-order message and prints
// it hex-encoded, ready to POST to the engine's /api/v1/offers
// endpoint. Amounts and routing are flag-driven; the companion slow
// confirmation (sequence+1) is printed alongside for settlement tests.
package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
)

func main() {
	var (
		amountIn    = flag.Uint64("amount-in", 69_000_000, "amount locked on the source chain")
		minOut      = flag.Uint64("min-amount-out", 0, "minimum acceptable delivery amount")
		maxFee      = flag.Uint64("max-fee", 500_000, "fee ceiling solvers bid under")
		initFee     = flag.Uint64("init-auction-fee", 10_000, "fee paid to whoever opens the auction")
		baseFee     = flag.Uint64("base-fee", 100_000, "protocol base fee in the slow confirmation")
		srcChain    = flag.Uint("source-chain", 2, "emitter chain ID")
		dstChain    = flag.Uint("target-chain", 1, "destination chain ID")
		sequence    = flag.Uint64("sequence", 1, "fast message sequence")
		emitterHex  = flag.String("emitter", "0x0000000000000000000000000000000000000000000000000000000000000e02", "emitter address (0x-hex or label)")
		redeemerHex = flag.String("redeemer", "0x00000000000000000000000000000000000000000000000000000000000000d1", "redeemer address (0x-hex or label)")
		senderHex   = flag.String("sender", "0x00000000000000000000000000000000000000000000000000000000000000a1", "order sender address (0x-hex or label)")
	)
	flag.Parse()

	emitter := mustAddress(*emitterHex)
	redeemer := mustAddress(*redeemerHex)
	sender := mustAddress(*senderHex)

	order := messages.FastMarketOrder{
		AmountIn:       *amountIn,
		MinAmountOut:   *minOut,
		TargetChain:    uint16(*dstChain),
		Redeemer:       redeemer,
		Sender:         sender,
		RefundAddress:  sender,
		MaxFee:         *maxFee,
		InitAuctionFee: *initFee,
	}

	now := uint32(time.Now().Unix())
	fast := messages.RawMessage{
		Timestamp:      now,
		EmitterChain:   uint16(*srcChain),
		EmitterAddress: emitter,
		Sequence:       *sequence,
		Payload:        order.Encode(),
	}

	deposit := messages.Deposit{
		Amount:        new(big.Int).SetUint64(*amountIn),
		BurnSource:    sender,
		MintRecipient: redeemer,
		Payload:       messages.EncodeDepositSlowOrderResponse(messages.SlowOrderResponse{BaseFee: *baseFee}),
	}
	slow := messages.RawMessage{
		Timestamp:      now,
		EmitterChain:   uint16(*srcChain),
		EmitterAddress: emitter,
		Sequence:       *sequence + 1,
		Payload:        deposit.Encode(),
	}

	fmt.Printf("digest:       %s\n", fast.ComputeDigest().Hex())
	fmt.Printf("fast message: %s\n", hexutil.Encode(fast.Encode()))
	fmt.Printf("slow message: %s\n", hexutil.Encode(slow.Encode()))
}

// mustAddress parses a 0x-hex address, or derives one deterministically
// from a plain label by hashing it (devnet convenience: --redeemer=alice).
func mustAddress(s string) messages.UniversalAddress {
	if !strings.HasPrefix(s, "0x") {
		h := sha3.NewLegacyKeccak256()
		h.Write([]byte(s))
		var out messages.UniversalAddress
		copy(out[:], h.Sum(nil))
		return out
	}
	addr, err := messages.AddressFromHex(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad address %s: %v\n", s, err)
		os.Exit(1)
	}
	return addr
}
