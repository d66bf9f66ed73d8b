package rpc

import (
	"encoding/json"
	"net/http"
)

type balanceParams struct {
	Address string `json:"address"`
}

type creditParams struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type eventsParams struct {
	Limit int `json:"limit,omitempty"`
}

type balanceResult struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

type eventResult struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params balanceParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	account, err := s.node.GetBalance(addr)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to load account", err.Error())
		return
	}
	writeResult(w, req.ID, balanceResult{
		Address: formatAddress(addr),
		Balance: bigString(account.Balance),
		Nonce:   account.Nonce,
	})
}

func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params creditParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	account, err := s.node.Credit(addr, amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to credit account", err.Error())
		return
	}
	writeResult(w, req.ID, balanceResult{
		Address: formatAddress(addr),
		Balance: bigString(account.Balance),
		Nonce:   account.Nonce,
	})
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	limit := 0
	if len(req.Params) > 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "at most one parameter object expected", nil)
		return
	}
	if len(req.Params) == 1 {
		var params eventsParams
		if err := json.Unmarshal(req.Params[0], &params); err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
			return
		}
		limit = params.Limit
	}
	emitted := s.node.RecentEvents(limit)
	results := make([]eventResult, 0, len(emitted))
	for _, evt := range emitted {
		results = append(results, eventResult{Type: evt.Type, Attributes: evt.Attributes})
	}
	writeResult(w, req.ID, results)
}
