package rpc

import (
	"encoding/json"
	"net/http"

	"passhub/native/params"
)

type paramsSetTradeFeesParams struct {
	Caller      string `json:"caller"`
	ProtocolBps uint32 `json:"protocolBps"`
	SubjectBps  uint32 `json:"subjectBps"`
	ReferralBps uint32 `json:"referralBps"`
}

type paramsSetSubscriptionFeesParams struct {
	Caller          string `json:"caller"`
	SubscriptionBps uint32 `json:"subscriptionBps"`
	ReferrerBps     uint32 `json:"referrerBps"`
}

type paramsSetCurveWeightsParams struct {
	Caller  string `json:"caller"`
	WeightA uint64 `json:"weightA"`
	WeightB uint64 `json:"weightB"`
	WeightC uint64 `json:"weightC"`
}

type paramsResult struct {
	ProtocolFeeBps     uint32 `json:"protocolFeeBps"`
	SubjectFeeBps      uint32 `json:"subjectFeeBps"`
	ReferralFeeBps     uint32 `json:"referralFeeBps"`
	SubscriptionFeeBps uint32 `json:"subscriptionFeeBps"`
	ReferrerFeeBps     uint32 `json:"referrerFeeBps"`
	Treasury           string `json:"treasury"`
	WeightA            uint64 `json:"weightA"`
	WeightB            uint64 `json:"weightB"`
	WeightC            uint64 `json:"weightC"`
	OutpostPrice       string `json:"outpostPrice"`
}

func formatParams(cfg *params.ProtocolConfig) paramsResult {
	return paramsResult{
		ProtocolFeeBps:     cfg.ProtocolFeeBps,
		SubjectFeeBps:      cfg.SubjectFeeBps,
		ReferralFeeBps:     cfg.ReferralFeeBps,
		SubscriptionFeeBps: cfg.SubscriptionFeeBps,
		ReferrerFeeBps:     cfg.ReferrerFeeBps,
		Treasury:           formatAddress(cfg.Treasury),
		WeightA:            cfg.WeightA,
		WeightB:            cfg.WeightB,
		WeightC:            cfg.WeightC,
		OutpostPrice:       bigString(cfg.OutpostPrice),
	}
}

func (s *Server) handleParamsGet(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	cfg, err := s.node.ParamsGet()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to load protocol config", err.Error())
		return
	}
	writeResult(w, req.ID, formatParams(cfg))
}

func (s *Server) handleParamsSetTradeFees(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var p paramsSetTradeFeesParams
	if err := json.Unmarshal(req.Params[0], &p); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	cfg, err := s.node.ParamsSetTradeFees(caller, p.ProtocolBps, p.SubjectBps, p.ReferralBps)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to update trade fees", err.Error())
		return
	}
	writeResult(w, req.ID, formatParams(cfg))
}

func (s *Server) handleParamsSetSubscriptionFees(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var p paramsSetSubscriptionFeesParams
	if err := json.Unmarshal(req.Params[0], &p); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	cfg, err := s.node.ParamsSetSubscriptionFees(caller, p.SubscriptionBps, p.ReferrerBps)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to update subscription fees", err.Error())
		return
	}
	writeResult(w, req.ID, formatParams(cfg))
}

func (s *Server) handleParamsSetCurveWeights(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var p paramsSetCurveWeightsParams
	if err := json.Unmarshal(req.Params[0], &p); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	cfg, err := s.node.ParamsSetCurveWeights(caller, p.WeightA, p.WeightB, p.WeightC)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to update curve weights", err.Error())
		return
	}
	writeResult(w, req.ID, formatParams(cfg))
}
