package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"passhub/core"
	"passhub/storage"
)

const testAuthToken = "test-secret"

var (
	testAdmin    = mustAddr("0x00000000000000000000000000000000000000ad")
	testTreasury = mustAddr("0x00000000000000000000000000000000000000fe")
	testBuyer    = "0x0000000000000000000000000000000000000b01"
	testCreator  = "0x0000000000000000000000000000000000000c01"
)

func mustAddr(raw string) [20]byte {
	addr, err := parseAddress(raw)
	if err != nil {
		panic(err)
	}
	return addr
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	node, err := core.NewNode(storage.NewMemDB(), testAdmin, testTreasury)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return NewServer(node, testAuthToken, ServerConfig{}, nil)
}

func rpcCall(t *testing.T, s *Server, method string, token string, params ...interface{}) RPCResponse {
	t.Helper()
	raw := make([]json.RawMessage, 0, len(params))
	for _, p := range params {
		encoded, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		raw = append(raw, encoded)
	}
	body, err := json.Marshal(RPCRequest{JSONRPC: jsonRPCVersion, Method: method, Params: raw, ID: 1})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", "/", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handle(rec, req)

	var resp RPCResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func mustResult(t *testing.T, resp RPCResponse, out interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected RPC error: %+v", resp.Error)
	}
	encoded, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("re-marshal result: %v", err)
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func fund(t *testing.T, s *Server, addr string, amount string) {
	t.Helper()
	resp := rpcCall(t, s, "hub_credit", testAuthToken, creditParams{Address: addr, Amount: amount})
	if resp.Error != nil {
		t.Fatalf("fund %s: %+v", addr, resp.Error)
	}
}

func TestMethodNotFound(t *testing.T) {
	s := newTestServer(t)
	resp := rpcCall(t, s, "hub_unknown", "")
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", resp.Error)
	}
}

func TestPrivilegedMethodsRequireAuth(t *testing.T) {
	s := newTestServer(t)
	for _, method := range []string{"params_setTradeFees", "params_setSubscriptionFees", "params_setCurveWeights", "hub_credit"} {
		resp := rpcCall(t, s, method, "")
		if resp.Error == nil || resp.Error.Code != codeUnauthorized {
			t.Fatalf("%s: expected unauthorized, got %+v", method, resp.Error)
		}
		resp = rpcCall(t, s, method, "wrong-token")
		if resp.Error == nil || resp.Error.Code != codeUnauthorized {
			t.Fatalf("%s: expected unauthorized for bad token, got %+v", method, resp.Error)
		}
	}
}

func TestBuySellRoundTrip(t *testing.T) {
	s := newTestServer(t)
	fund(t, s, testBuyer, "100000000000")

	var trade marketTradeResult
	mustResult(t, rpcCall(t, s, "market_buyPass", "", marketTradeParams{
		Caller: testBuyer,
		Target: testBuyer,
		Amount: 3,
	}), &trade)
	if trade.Supply != 3 {
		t.Fatalf("expected supply 3 after buy, got %d", trade.Supply)
	}

	var stats marketStatsResult
	mustResult(t, rpcCall(t, s, "market_stats", "", marketStatsParams{Target: testBuyer, Holder: testBuyer}), &stats)
	if stats.TotalSupply != 3 || stats.HolderUnits != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	var vault marketVaultResult
	mustResult(t, rpcCall(t, s, "market_vault", ""), &vault)
	if vault.Balance == "0" {
		t.Fatalf("expected funded vault after buy")
	}

	mustResult(t, rpcCall(t, s, "market_sellPass", "", marketTradeParams{
		Caller: testBuyer,
		Target: testBuyer,
		Amount: 3,
	}), &trade)
	if trade.Supply != 0 {
		t.Fatalf("expected supply 0 after sell, got %d", trade.Supply)
	}

	mustResult(t, rpcCall(t, s, "market_vault", ""), &vault)
	if vault.Balance != "0" {
		t.Fatalf("expected drained vault, got %s", vault.Balance)
	}
}

func TestQuoteMatchesExecution(t *testing.T) {
	s := newTestServer(t)
	fund(t, s, testBuyer, "100000000000")

	var quote marketQuoteResult
	mustResult(t, rpcCall(t, s, "market_quote", "", marketQuoteParams{Target: testBuyer, Amount: 2}), &quote)

	var trade marketTradeResult
	mustResult(t, rpcCall(t, s, "market_buyPass", "", marketTradeParams{
		Caller: testBuyer,
		Target: testBuyer,
		Amount: 2,
	}), &trade)
	if trade.Price != quote.Price {
		t.Fatalf("quote %s does not match execution %s", quote.Price, trade.Price)
	}
}

func TestOutpostLifecycleOverRPC(t *testing.T) {
	s := newTestServer(t)
	fund(t, s, testCreator, "10000000000")
	fund(t, s, testBuyer, "10000000000")

	var created outpostResult
	mustResult(t, rpcCall(t, s, "outpost_create", "", outpostCreateParams{
		Caller: testCreator,
		Name:   "arena",
		URI:    "ipfs://arena",
	}), &created)
	if created.Owner == "" || created.Address == "" {
		t.Fatalf("unexpected create result %+v", created)
	}

	var tier outpostTierCreatedResult
	mustResult(t, rpcCall(t, s, "outpost_createTier", "", outpostTierParams{
		Caller:   testCreator,
		Address:  created.Address,
		Name:     "gold",
		Price:    "1000000",
		Duration: "month",
	}), &tier)

	var receipt outpostSubscribeResult
	mustResult(t, rpcCall(t, s, "outpost_subscribe", "", outpostSubscribeParams{
		Caller:  testBuyer,
		Address: created.Address,
		TierID:  tier.TierID,
	}), &receipt)
	if receipt.EndTime <= receipt.StartTime {
		t.Fatalf("unexpected subscription window %+v", receipt)
	}

	var status outpostStatusResult
	mustResult(t, rpcCall(t, s, "outpost_subscriptionStatus", "", outpostStatusParams{
		Subscriber: testBuyer,
		Address:    created.Address,
	}), &status)
	if !status.Subscribed || !status.Active {
		t.Fatalf("expected active subscription, got %+v", status)
	}

	mustResult(t, rpcCall(t, s, "outpost_cancelSubscription", "", outpostCancelParams{
		Caller:  testBuyer,
		Address: created.Address,
	}), &map[string]bool{})

	mustResult(t, rpcCall(t, s, "outpost_subscriptionStatus", "", outpostStatusParams{
		Subscriber: testBuyer,
		Address:    created.Address,
	}), &status)
	if status.Subscribed || status.Active {
		t.Fatalf("expected cancelled subscription, got %+v", status)
	}
}

func TestParamsUpdateFlow(t *testing.T) {
	s := newTestServer(t)

	var cfg paramsResult
	mustResult(t, rpcCall(t, s, "params_get", ""), &cfg)
	if cfg.ProtocolFeeBps != 400 {
		t.Fatalf("unexpected default protocol fee %d", cfg.ProtocolFeeBps)
	}

	adminHex := formatAddress(testAdmin)
	mustResult(t, rpcCall(t, s, "params_setTradeFees", testAuthToken, paramsSetTradeFeesParams{
		Caller:      adminHex,
		ProtocolBps: 500,
		SubjectBps:  700,
		ReferralBps: 100,
	}), &cfg)
	if cfg.ProtocolFeeBps != 500 || cfg.SubjectFeeBps != 700 {
		t.Fatalf("trade fee update not applied: %+v", cfg)
	}

	resp := rpcCall(t, s, "params_setTradeFees", testAuthToken, paramsSetTradeFeesParams{
		Caller:      testBuyer,
		ProtocolBps: 100,
		SubjectBps:  100,
		ReferralBps: 100,
	})
	if resp.Error == nil {
		t.Fatalf("expected non-admin caller to be rejected")
	}
}

func TestEventsFeed(t *testing.T) {
	s := newTestServer(t)
	fund(t, s, testBuyer, "100000000000")

	var trade marketTradeResult
	mustResult(t, rpcCall(t, s, "market_buyPass", "", marketTradeParams{
		Caller: testBuyer,
		Target: testBuyer,
		Amount: 1,
	}), &trade)

	var results []eventResult
	mustResult(t, rpcCall(t, s, "hub_getEvents", "", eventsParams{Limit: 10}), &results)
	found := false
	for _, evt := range results {
		if evt.Type == "market.pass.purchased" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected pass purchase event in feed, got %+v", results)
	}
}

func TestInvalidParamsRejected(t *testing.T) {
	s := newTestServer(t)
	resp := rpcCall(t, s, "market_buyPass", "", marketTradeParams{Caller: "nope", Target: testBuyer, Amount: 1})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
	resp = rpcCall(t, s, "market_quote", "")
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params for missing object, got %+v", resp.Error)
	}
}

func TestInsufficientFundsSurfaceAsError(t *testing.T) {
	s := newTestServer(t)
	resp := rpcCall(t, s, "market_buyPass", "", marketTradeParams{Caller: testBuyer, Target: testBuyer, Amount: 1})
	if resp.Error == nil || resp.Error.Code != codeServerError {
		t.Fatalf("expected server error for unfunded buyer, got %+v", resp.Error)
	}
	if resp.Error.Data == nil {
		t.Fatalf("expected error detail, got %+v", resp.Error)
	}
	detail := fmt.Sprintf("%v", resp.Error.Data)
	if detail == "" {
		t.Fatalf("expected error detail text")
	}
}
