package metrics

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type MarketMetrics struct {
	tradesSettled   *prometheus.CounterVec
	tradeVolume     *prometheus.CounterVec
	vaultBalance    prometheus.Gauge
	subscriptions   *prometheus.CounterVec
	outpostsCreated prometheus.Counter
	rpcRequests     *prometheus.CounterVec
}

var (
	marketOnce     sync.Once
	marketRegistry *MarketMetrics
)

func Market() *MarketMetrics {
	marketOnce.Do(func() {
		marketRegistry = &MarketMetrics{
			tradesSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "passhub_trades_settled_total",
				Help: "Count of settled pass trades by side.",
			}, []string{"side"}),
			tradeVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "passhub_trade_volume_octa_total",
				Help: "Gross curve volume settled per side, in base units.",
			}, []string{"side"}),
			vaultBalance: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "passhub_vault_balance_octa",
				Help: "Current redemption vault balance in base units.",
			}),
			subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "passhub_subscriptions_total",
				Help: "Count of subscription transitions by action.",
			}, []string{"action"}),
			outpostsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "passhub_outposts_created_total",
				Help: "Count of outposts registered.",
			}),
			rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "passhub_rpc_requests_total",
				Help: "Count of RPC requests by method and outcome.",
			}, []string{"method", "outcome"}),
		}
		prometheus.MustRegister(
			marketRegistry.tradesSettled,
			marketRegistry.tradeVolume,
			marketRegistry.vaultBalance,
			marketRegistry.subscriptions,
			marketRegistry.outpostsCreated,
			marketRegistry.rpcRequests,
		)
	})
	return marketRegistry
}

func (m *MarketMetrics) ObserveTrade(side string, gross *big.Int) {
	if m == nil {
		return
	}
	if side == "" {
		side = "unknown"
	}
	m.tradesSettled.WithLabelValues(side).Inc()
	if gross != nil {
		amount, _ := new(big.Float).SetInt(gross).Float64()
		m.tradeVolume.WithLabelValues(side).Add(amount)
	}
}

func (m *MarketMetrics) SetVaultBalance(balance *big.Int) {
	if m == nil || balance == nil {
		return
	}
	amount, _ := new(big.Float).SetInt(balance).Float64()
	m.vaultBalance.Set(amount)
}

func (m *MarketMetrics) ObserveSubscription(action string) {
	if m == nil {
		return
	}
	if action == "" {
		action = "unknown"
	}
	m.subscriptions.WithLabelValues(action).Inc()
}

func (m *MarketMetrics) ObserveOutpostCreated() {
	if m == nil {
		return
	}
	m.outpostsCreated.Inc()
}

func (m *MarketMetrics) ObserveRPCRequest(method, outcome string) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.rpcRequests.WithLabelValues(method, outcome).Inc()
}
