package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/params"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/api"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/engine"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/events"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/ledger"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/storage"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/util"
)

func main() {
	cfg := params.LoadFromEnv("")

	logger, err := util.NewLoggerWithFile(cfg.Node.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Node.LogFile)

	custody, err := messages.AddressFromHex(cfg.Node.Custody)
	if err != nil {
		sugar.Fatalw("bad_custody_address", "err", err)
	}
	feeRecipient, err := messages.AddressFromHex(cfg.Node.FeeRecipient)
	if err != nil {
		sugar.Fatalw("bad_fee_recipient_address", "err", err)
	}

	store, err := storage.NewPebbleStore(cfg.Node.DBPath)
	if err != nil {
		sugar.Fatalw("store_init_failed", "err", err)
	}
	defer store.Close()

	routes := engine.NewEndpointRegistry()
	for _, r := range cfg.Routes {
		emitter, err := messages.AddressFromHex(r.Emitter)
		if err != nil {
			sugar.Fatalw("bad_route_emitter", "chain", r.Chain, "err", err)
		}
		if err := routes.Register(engine.Endpoint{Chain: r.Chain, Address: emitter, Enabled: r.Enabled}); err != nil {
			sugar.Fatalw("route_register_failed", "chain", r.Chain, "err", err)
		}
	}
	if err := routes.Register(engine.Endpoint{Chain: cfg.Node.Chain, Enabled: true}); err != nil {
		sugar.Fatalw("route_register_failed", "chain", cfg.Node.Chain, "err", err)
	}

	sink := events.NewFanout(sugar)
	if cfg.Kafka.Enabled {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, sugar)
		defer kp.Close()
		sink.Add(kp)
		sugar.Infow("kafka_enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	sink.Add(events.TransportFunc(func(_, value []byte) {
		if err := store.AppendEvent(value); err != nil {
			sugar.Errorw("audit_append_failed", "err", err)
		}
	}))

	eng, err := engine.New(engine.Options{
		Params:       cfg.Auction,
		ConfigID:     cfg.ConfigID,
		LocalChain:   cfg.Node.Chain,
		Custody:      custody,
		FeeRecipient: feeRecipient,
		Store:        store,
		Ledger:       ledger.NewTokenLedger(),
		Routes:       routes,
		Verifier:     messages.AcceptAll{},
		Sink:         sink,
		Logger:       sugar,
	})
	if err != nil {
		sugar.Fatalw("engine_init_failed", "err", err)
	}

	clock := util.NewSlotClock(cfg.Node.SlotTime)
	server := api.NewServer(eng, clock, store, sugar)
	sink.Add(events.TransportFunc(func(_, value []byte) {
		server.Hub().Broadcast(value)
	}))

	go func() {
		if err := server.Start(cfg.Node.APIAddr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	sugar.Infow("engine_started",
		"chain", cfg.Node.Chain,
		"db", cfg.Node.DBPath,
		"api", cfg.Node.APIAddr,
		"duration_slots", cfg.Auction.Duration,
		"grace_slots", cfg.Auction.GracePeriod,
		"penalty_slots", cfg.Auction.PenaltyPeriod,
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	sugar.Info("shutting down")
}
