package rpc

import (
	"encoding/json"
	"net/http"

	"passhub/native/market"
)

type marketTradeParams struct {
	Caller   string `json:"caller"`
	Target   string `json:"target"`
	Amount   uint64 `json:"amount"`
	Referrer string `json:"referrer,omitempty"`
}

type marketQuoteParams struct {
	Target string `json:"target"`
	Amount uint64 `json:"amount"`
	Sell   bool   `json:"sell,omitempty"`
}

type marketStatsParams struct {
	Target string `json:"target"`
	Holder string `json:"holder,omitempty"`
}

type marketTradeResult struct {
	Target      string `json:"target"`
	Trader      string `json:"trader"`
	Amount      uint64 `json:"amount"`
	Price       string `json:"price"`
	ProtocolFee string `json:"protocolFee"`
	SubjectFee  string `json:"subjectFee"`
	ReferralFee string `json:"referralFee"`
	Total       string `json:"total"`
	Supply      uint64 `json:"supply"`
}

type marketQuoteResult struct {
	Target string `json:"target"`
	Amount uint64 `json:"amount"`
	Sell   bool   `json:"sell"`
	Price  string `json:"price"`
	Supply uint64 `json:"supply"`
}

type marketStatsResult struct {
	Target      string `json:"target"`
	TotalSupply uint64 `json:"totalSupply"`
	LastPrice   string `json:"lastPrice"`
	HolderUnits uint64 `json:"holderUnits,omitempty"`
}

type marketVaultResult struct {
	Balance string `json:"balance"`
}

func formatTrade(trade *market.Trade) marketTradeResult {
	return marketTradeResult{
		Target:      formatAddress(trade.Target),
		Trader:      formatAddress(trade.Trader),
		Amount:      trade.Amount,
		Price:       bigString(trade.Price),
		ProtocolFee: bigString(trade.ProtocolFee),
		SubjectFee:  bigString(trade.SubjectFee),
		ReferralFee: bigString(trade.ReferralFee),
		Total:       bigString(trade.Total),
		Supply:      trade.Supply,
	}
}

func (s *Server) handleMarketBuyPass(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params marketTradeParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	buyer, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	target, err := parseAddress(params.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid target address", err.Error())
		return
	}
	referrer, err := parseOptionalAddress(params.Referrer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid referrer address", err.Error())
		return
	}
	trade, err := s.node.MarketBuyPass(buyer, target, params.Amount, referrer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to buy pass", err.Error())
		return
	}
	writeResult(w, req.ID, formatTrade(trade))
}

func (s *Server) handleMarketSellPass(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params marketTradeParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	seller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	target, err := parseAddress(params.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid target address", err.Error())
		return
	}
	trade, err := s.node.MarketSellPass(seller, target, params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to sell pass", err.Error())
		return
	}
	writeResult(w, req.ID, formatTrade(trade))
}

func (s *Server) handleMarketQuote(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params marketQuoteParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	target, err := parseAddress(params.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid target address", err.Error())
		return
	}
	quote, err := s.node.MarketQuote(target, params.Amount, params.Sell)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to quote", err.Error())
		return
	}
	writeResult(w, req.ID, marketQuoteResult{
		Target: formatAddress(quote.Target),
		Amount: quote.Amount,
		Sell:   quote.Sell,
		Price:  bigString(quote.Price),
		Supply: quote.Supply,
	})
}

func (s *Server) handleMarketStats(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params marketStatsParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	target, err := parseAddress(params.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid target address", err.Error())
		return
	}
	holder, err := parseOptionalAddress(params.Holder)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid holder address", err.Error())
		return
	}
	stats, held, err := s.node.MarketStats(target, holder)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to load stats", err.Error())
		return
	}
	writeResult(w, req.ID, marketStatsResult{
		Target:      formatAddress(target),
		TotalSupply: stats.TotalSupply,
		LastPrice:   bigString(stats.LastPrice),
		HolderUnits: held,
	})
}

func (s *Server) handleMarketVault(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	balance, err := s.node.VaultBalance()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to load vault balance", err.Error())
		return
	}
	writeResult(w, req.ID, marketVaultResult{Balance: bigString(balance)})
}
