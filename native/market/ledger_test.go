package market

import (
	"errors"
	"math/big"
	"testing"
)

func TestPassStatsDefaults(t *testing.T) {
	stats := NewPassStats()
	if stats.TotalSupply != 0 {
		t.Fatalf("default supply = %d, want 0", stats.TotalSupply)
	}
	if stats.LastPrice.Cmp(InitialPrice()) != 0 {
		t.Fatalf("default last price = %s, want the initial price", stats.LastPrice)
	}
}

func TestPassStatsRecordBuySell(t *testing.T) {
	stats := NewPassStats()
	if err := stats.RecordBuy(5, big.NewInt(1_000)); err != nil {
		t.Fatalf("record buy: %v", err)
	}
	if stats.TotalSupply != 5 {
		t.Fatalf("supply = %d, want 5", stats.TotalSupply)
	}
	if err := stats.RecordSell(3, big.NewInt(900)); err != nil {
		t.Fatalf("record sell: %v", err)
	}
	if stats.TotalSupply != 2 {
		t.Fatalf("supply = %d, want 2", stats.TotalSupply)
	}
	if stats.LastPrice.Int64() != 900 {
		t.Fatalf("last price = %s, want 900", stats.LastPrice)
	}
}

func TestPassStatsSellUnderflow(t *testing.T) {
	stats := NewPassStats()
	if err := stats.RecordBuy(2, big.NewInt(100)); err != nil {
		t.Fatalf("record buy: %v", err)
	}
	if err := stats.RecordSell(3, big.NewInt(100)); !errors.Is(err, ErrSupplyUnderflow) {
		t.Fatalf("expected supply underflow, got %v", err)
	}
	if stats.TotalSupply != 2 {
		t.Fatalf("failed sell mutated supply: %d", stats.TotalSupply)
	}
}

func TestPassStatsCloneIsDeep(t *testing.T) {
	stats := NewPassStats()
	clone := stats.Clone()
	clone.LastPrice.SetInt64(42)
	if stats.LastPrice.Int64() == 42 {
		t.Fatal("clone aliases the original last price")
	}
}
