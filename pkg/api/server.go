package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/engine"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/util"
)

// EventLog is the optional audit-trail reader backing the
// recent-events endpoint.
type EventLog interface {
	RecentEvents(limit int) ([][]byte, error)
}

// Server exposes the engine's query surface over REST and streams
// auction events over WebSocket.
type Server struct {
	engine *engine.Engine
	clock  util.SlotSource
	events EventLog // may be nil
	router *mux.Router
	hub    *Hub
	log    *zap.SugaredLogger
}

// NewServer wires routes and the WebSocket hub.
func NewServer(eng *engine.Engine, clock util.SlotSource, events EventLog, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		engine: eng,
		clock:  clock,
		events: events,
		router: mux.NewRouter(),
		hub:    NewHub(log),
		log:    log,
	}
	s.setupRoutes()
	return s
}

// Hub returns the WebSocket hub so the event fan-out can broadcast
// through it.
func (s *Server) Hub() *Hub { return s.hub }

// ServeHTTP makes the server mountable as a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auctions/{digest}", s.handleGetAuction).Methods("GET")
	api.HandleFunc("/auctions/{digest}/penalty", s.handlePenaltyQuote).Methods("GET")
	api.HandleFunc("/routes", s.handleGetRoutes).Methods("GET")
	api.HandleFunc("/events", s.handleRecentEvents).Methods("GET")

	api.HandleFunc("/offers", s.handleSubmitOffer).Methods("POST")
	api.HandleFunc("/execute", s.handleExecute).Methods("POST")
	api.HandleFunc("/settle/prepare", s.handlePrepare).Methods("POST")
	api.HandleFunc("/settle/complete", s.handleSettleComplete).Methods("POST")
	api.HandleFunc("/settle/none", s.handleSettleNone).Methods("POST")

	s.router.HandleFunc("/ws", s.hub.serveWS)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the HTTP server; it blocks.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(s.router)

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.log.Infow("api_listening", "addr", addr)
	return srv.ListenAndServe()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, engine.ErrAuctionNotFound),
		errors.Is(err, engine.ErrPreparedResponseNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrDuplicateAuction),
		errors.Is(err, engine.ErrAlreadySettled),
		errors.Is(err, engine.ErrAlreadyPrepared):
		status = http.StatusConflict
	case errors.Is(err, messages.ErrMalformedMessage):
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"slot":   s.clock.Now().Slot,
	})
}

func (s *Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	digest, err := messages.DigestFromHex(mux.Vars(r)["digest"])
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	auction, err := s.engine.GetAuction(digest)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.auctionInfo(auction))
}

func (s *Server) auctionInfo(a *engine.Auction) AuctionInfo {
	return AuctionInfo{
		Digest:            a.Digest.Hex(),
		Status:            a.Status.String(),
		ConfigID:          a.ConfigID,
		SourceChain:       a.SourceChain,
		TargetChain:       a.TargetChain,
		StartSlot:         a.StartSlot,
		EndSlot:           a.EndSlot(s.engine.Params()),
		AmountIn:          a.AmountIn,
		SecurityDeposit:   a.SecurityDeposit,
		OfferPrice:        a.OfferPrice,
		BestOfferToken:    a.BestOfferToken.Hex(),
		InitialOfferToken: a.InitialOfferToken.Hex(),
		ExecutePenalty:    a.ExecutePenalty,
		ExecuteReward:     a.ExecuteReward,
		SettledBaseFee:    a.SettledBaseFee,
	}
}

func (s *Server) handlePenaltyQuote(w http.ResponseWriter, r *http.Request) {
	digest, err := messages.DigestFromHex(mux.Vars(r)["digest"])
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	auction, err := s.engine.GetAuction(digest)
	if err != nil {
		s.writeError(w, err)
		return
	}

	slot := s.clock.Now().Slot
	if v := r.URL.Query().Get("slot"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid slot"})
			return
		}
		slot = n
	}
	penalty, reward := engine.ComputeDepositPenalty(s.engine.Params(), auction.SecurityDeposit, auction.StartSlot, slot, 0)
	s.writeJSON(w, http.StatusOK, PenaltyQuote{
		Digest:     digest.Hex(),
		Slot:       slot,
		Penalty:    penalty,
		UserReward: reward,
	})
}

func (s *Server) handleGetRoutes(w http.ResponseWriter, r *http.Request) {
	eps := s.engine.Routes().List()
	out := make([]RouteInfo, 0, len(eps))
	for _, ep := range eps {
		out = append(out, RouteInfo{Chain: ep.Chain, Emitter: ep.Address.Hex(), Enabled: ep.Enabled})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		s.writeJSON(w, http.StatusOK, []json.RawMessage{})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	raw, err := s.events.RecentEvents(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]json.RawMessage, 0, len(raw))
	for _, ev := range raw {
		out = append(out, json.RawMessage(ev))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func decodeBody[T any](r *http.Request) (T, error) {
	var req T
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

func (s *Server) handleSubmitOffer(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[OfferRequest](r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	token, err := messages.AddressFromHex(req.OfferToken)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var auction *engine.Auction
	if req.Message != "" {
		raw, err := hexutil.Decode(req.Message)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid message hex"})
			return
		}
		auction, err = s.engine.PlaceInitialOffer(s.clock.Now(), raw, nil, req.OfferPrice, token)
		if err != nil {
			s.writeError(w, err)
			return
		}
	} else {
		digest, err := messages.DigestFromHex(req.Digest)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		auction, err = s.engine.ImproveOffer(s.clock.Now(), digest, req.OfferPrice, token)
		if err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, s.auctionInfo(auction))
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[ExecuteRequest](r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	raw, err := hexutil.Decode(req.Message)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid message hex"})
		return
	}
	token, err := messages.AddressFromHex(req.ExecutorToken)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	res, err := s.engine.ExecuteFastOrder(s.clock.Now(), raw, nil, token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"auction":     s.auctionInfo(res.Auction),
		"fillAmount":  res.FillAmount,
		"penalty":     res.Penalty,
		"userReward":  res.UserReward,
		"fillMessage": hexutil.Encode(res.FillMessage),
	})
}

func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[SettleRequest](r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	fast, err := hexutil.Decode(req.FastMessage)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid fast message hex"})
		return
	}
	slow, err := hexutil.Decode(req.SlowMessage)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid slow message hex"})
		return
	}
	caller, err := messages.AddressFromHex(req.CallerToken)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	prepared, err := s.engine.PrepareOrderResponse(fast, slow, nil, caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, prepared)
}

func (s *Server) handleSettleComplete(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[SettleRequest](r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	digest, err := messages.DigestFromHex(req.Digest)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	caller, err := messages.AddressFromHex(req.CallerToken)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	auction, err := s.engine.SettleComplete(digest, caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.auctionInfo(auction))
}

func (s *Server) handleSettleNone(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[SettleRequest](r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	digest, err := messages.DigestFromHex(req.Digest)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	auction, fillMsg, err := s.engine.SettleNone(digest)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"auction":     s.auctionInfo(auction),
		"fillMessage": hexutil.Encode(fillMsg),
	})
}
