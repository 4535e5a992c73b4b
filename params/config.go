package params

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/engine"
)

// Route declares a registered cross-chain endpoint.
type Route struct {
	Chain   uint16
	Emitter string // 0x-prefixed 32-byte hex
	Enabled bool
}

// Node holds daemon-level settings.
type Node struct {
	Chain        uint16 // chain ID the engine itself runs on
	DBPath       string
	APIAddr      string
	LogFile      string
	Custody      string // custody token account, 0x hex
	FeeRecipient string // fallback fee recipient, 0x hex

	// SlotTime converts wall time into slots for the daemon's clock.
	SlotTime time.Duration
}

// Kafka holds the optional settlement-event stream settings.
type Kafka struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// Config is the full daemon configuration.
type Config struct {
	ConfigID uint32
	Auction  engine.AuctionParameters
	Node     Node
	Kafka    Kafka
	Routes   []Route
}

// Default returns devnet defaults: a two-route table and the reference
// auction policy.
func Default() Config {
	return Config{
		ConfigID: 0,
		Auction: engine.AuctionParameters{
			Duration:             2,
			GracePeriod:          5,
			PenaltyPeriod:        10,
			UserPenaltyRewardBps: 250_000, // 25%
			InitialPenaltyBps:    100_000, // 10%
			MinOfferDeltaBps:     50_000,  // 5%
			SecurityDepositBase:  1_000_000,
			SecurityDepositBps:   5_000, // 0.5%
		},
		Node: Node{
			Chain:        1,
			DBPath:       "data/auctions.db",
			APIAddr:      ":8080",
			LogFile:      "data/engine.log",
			Custody:      "0x00000000000000000000000000000000000000000000000000000000000c0515",
			FeeRecipient: "0x0000000000000000000000000000000000000000000000000000000000fee001",
			SlotTime:     400 * time.Millisecond,
		},
		Kafka: Kafka{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topic:   "liquidity-layer.settlements",
		},
		Routes: []Route{
			{Chain: 2, Emitter: "0x0000000000000000000000000000000000000000000000000000000000000e02", Enabled: true},
			{Chain: 6, Emitter: "0x0000000000000000000000000000000000000000000000000000000000000e06", Enabled: true},
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("AUCTION_DURATION_SLOTS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Auction.Duration = n
		}
	}
	if v := os.Getenv("AUCTION_GRACE_PERIOD_SLOTS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Auction.GracePeriod = n
		}
	}
	if v := os.Getenv("AUCTION_PENALTY_PERIOD_SLOTS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Auction.PenaltyPeriod = n
		}
	}
	if v := os.Getenv("AUCTION_USER_PENALTY_REWARD_BPS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Auction.UserPenaltyRewardBps = uint32(n)
		}
	}
	if v := os.Getenv("AUCTION_INITIAL_PENALTY_BPS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Auction.InitialPenaltyBps = uint32(n)
		}
	}
	if v := os.Getenv("AUCTION_MIN_OFFER_DELTA_BPS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Auction.MinOfferDeltaBps = uint32(n)
		}
	}
	if v := os.Getenv("AUCTION_SECURITY_DEPOSIT_BASE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Auction.SecurityDepositBase = n
		}
	}
	if v := os.Getenv("AUCTION_SECURITY_DEPOSIT_BPS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Auction.SecurityDepositBps = uint32(n)
		}
	}

	if v := os.Getenv("NODE_CHAIN"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.Node.Chain = uint16(n)
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Node.DBPath = v
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.Node.APIAddr = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Node.LogFile = v
	}
	if v := os.Getenv("CUSTODY_TOKEN"); v != "" {
		cfg.Node.Custody = v
	}
	if v := os.Getenv("FEE_RECIPIENT_TOKEN"); v != "" {
		cfg.Node.FeeRecipient = v
	}
	if v := os.Getenv("SLOT_TIME_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Node.SlotTime = time.Duration(ms) * time.Millisecond
		}
	}

	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.Kafka.Enabled = v == "true"
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}

	return cfg
}
