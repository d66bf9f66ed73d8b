package rpc

import (
	"encoding/json"
	"net/http"
	"strings"

	"passhub/native/outpost"
)

type outpostCreateParams struct {
	Caller      string `json:"caller"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URI         string `json:"uri,omitempty"`
}

type outpostGetParams struct {
	Address string `json:"address"`
}

type outpostUpdatePriceParams struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
	Price   string `json:"price"`
}

type outpostTogglePauseParams struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

type outpostTransferParams struct {
	Caller   string `json:"caller"`
	Address  string `json:"address"`
	NewOwner string `json:"newOwner"`
}

type outpostTierParams struct {
	Caller   string `json:"caller"`
	Address  string `json:"address"`
	TierID   uint64 `json:"tierId,omitempty"`
	Name     string `json:"name,omitempty"`
	Price    string `json:"price"`
	Duration string `json:"duration"`
}

type outpostSubscribeParams struct {
	Caller   string `json:"caller"`
	Address  string `json:"address"`
	TierID   uint64 `json:"tierId"`
	Referrer string `json:"referrer,omitempty"`
}

type outpostCancelParams struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

type outpostStatusParams struct {
	Subscriber string `json:"subscriber"`
	Address    string `json:"address"`
}

type outpostTierResult struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Duration string `json:"duration"`
}

type outpostResult struct {
	Address       string              `json:"address"`
	Owner         string              `json:"owner"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	URI           string              `json:"uri,omitempty"`
	PurchasePrice string              `json:"purchasePrice"`
	Paused        bool                `json:"paused"`
	RoyaltyBps    uint32              `json:"royaltyBps"`
	Tiers         []outpostTierResult `json:"tiers,omitempty"`
	CreatedAt     uint64              `json:"createdAt"`
}

type outpostTierCreatedResult struct {
	Address string `json:"address"`
	TierID  uint64 `json:"tierId"`
}

type outpostSubscribeResult struct {
	Outpost     string `json:"outpost"`
	Subscriber  string `json:"subscriber"`
	TierID      uint64 `json:"tierId"`
	Price       string `json:"price"`
	ProtocolFee string `json:"protocolFee"`
	ReferralFee string `json:"referralFee"`
	OwnerShare  string `json:"ownerShare"`
	StartTime   uint64 `json:"startTime"`
	EndTime     uint64 `json:"endTime"`
}

type outpostStatusResult struct {
	Subscribed bool   `json:"subscribed"`
	Active     bool   `json:"active"`
	TierID     uint64 `json:"tierId,omitempty"`
	StartTime  uint64 `json:"startTime,omitempty"`
	EndTime    uint64 `json:"endTime,omitempty"`
}

func formatOutpost(record *outpost.Outpost) outpostResult {
	tiers := make([]outpostTierResult, 0, len(record.Tiers))
	for i := range record.Tiers {
		tier := &record.Tiers[i]
		tiers = append(tiers, outpostTierResult{
			ID:       uint64(i),
			Name:     tier.Name,
			Price:    bigString(tier.Price),
			Duration: tier.Duration.String(),
		})
	}
	return outpostResult{
		Address:       formatAddress(record.Address),
		Owner:         formatAddress(record.Owner),
		Name:          record.Name,
		Description:   record.Description,
		URI:           record.URI,
		PurchasePrice: bigString(record.PurchasePrice),
		Paused:        record.Paused,
		RoyaltyBps:    record.RoyaltyBps,
		Tiers:         tiers,
		CreatedAt:     record.CreatedAt,
	}
}

func (s *Server) handleOutpostCreate(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params outpostCreateParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	creator, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if strings.TrimSpace(params.Name) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "name is required", nil)
		return
	}
	record, err := s.node.OutpostCreate(creator, params.Name, params.Description, params.URI)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to create outpost", err.Error())
		return
	}
	writeResult(w, req.ID, formatOutpost(record))
}

func (s *Server) handleOutpostGet(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params outpostGetParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid outpost address", err.Error())
		return
	}
	record, err := s.node.OutpostGet(addr)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to load outpost", err.Error())
		return
	}
	writeResult(w, req.ID, formatOutpost(record))
}

func (s *Server) handleOutpostUpdatePrice(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params outpostUpdatePriceParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid outpost address", err.Error())
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	record, err := s.node.OutpostUpdatePrice(caller, addr, price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to update price", err.Error())
		return
	}
	writeResult(w, req.ID, formatOutpost(record))
}

func (s *Server) handleOutpostTogglePause(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params outpostTogglePauseParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid outpost address", err.Error())
		return
	}
	record, err := s.node.OutpostTogglePause(caller, addr)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to toggle pause", err.Error())
		return
	}
	writeResult(w, req.ID, formatOutpost(record))
}

func (s *Server) handleOutpostTransferOwnership(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params outpostTransferParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid outpost address", err.Error())
		return
	}
	newOwner, err := parseAddress(params.NewOwner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid new owner address", err.Error())
		return
	}
	record, err := s.node.OutpostTransferOwnership(caller, addr, newOwner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to transfer ownership", err.Error())
		return
	}
	writeResult(w, req.ID, formatOutpost(record))
}

func (s *Server) handleOutpostCreateTier(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params outpostTierParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid outpost address", err.Error())
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	duration, err := outpost.ParseDuration(params.Duration)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid tier duration", err.Error())
		return
	}
	tierID, err := s.node.OutpostCreateTier(caller, addr, params.Name, price, duration)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to create tier", err.Error())
		return
	}
	writeResult(w, req.ID, outpostTierCreatedResult{Address: formatAddress(addr), TierID: tierID})
}

func (s *Server) handleOutpostUpdateTier(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params outpostTierParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid outpost address", err.Error())
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	duration, err := outpost.ParseDuration(params.Duration)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid tier duration", err.Error())
		return
	}
	if err := s.node.OutpostUpdateTier(caller, addr, params.TierID, price, duration); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to update tier", err.Error())
		return
	}
	writeResult(w, req.ID, outpostTierCreatedResult{Address: formatAddress(addr), TierID: params.TierID})
}

func (s *Server) handleOutpostSubscribe(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params outpostSubscribeParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	subscriber, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid outpost address", err.Error())
		return
	}
	referrer, err := parseOptionalAddress(params.Referrer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid referrer address", err.Error())
		return
	}
	receipt, err := s.node.OutpostSubscribe(subscriber, addr, params.TierID, referrer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to subscribe", err.Error())
		return
	}
	writeResult(w, req.ID, outpostSubscribeResult{
		Outpost:     formatAddress(receipt.Outpost),
		Subscriber:  formatAddress(receipt.Subscriber),
		TierID:      receipt.TierID,
		Price:       bigString(receipt.Price),
		ProtocolFee: bigString(receipt.ProtocolFee),
		ReferralFee: bigString(receipt.ReferralFee),
		OwnerShare:  bigString(receipt.OwnerShare),
		StartTime:   receipt.StartTime,
		EndTime:     receipt.EndTime,
	})
}

func (s *Server) handleOutpostCancelSubscription(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params outpostCancelParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	subscriber, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid outpost address", err.Error())
		return
	}
	if err := s.node.OutpostCancelSubscription(subscriber, addr); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to cancel subscription", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]bool{"cancelled": true})
}

func (s *Server) handleOutpostSubscriptionStatus(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params outpostStatusParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	subscriber, err := parseAddress(params.Subscriber)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid subscriber address", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid outpost address", err.Error())
		return
	}
	sub, active, err := s.node.OutpostSubscriptionStatus(subscriber, addr)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to load subscription", err.Error())
		return
	}
	result := outpostStatusResult{Subscribed: sub != nil, Active: active}
	if sub != nil {
		result.TierID = sub.TierID
		result.StartTime = sub.StartTime
		result.EndTime = sub.EndTime
	}
	writeResult(w, req.ID, result)
}
