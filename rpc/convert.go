package rpc

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func parseAddress(raw string) ([20]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if !common.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("%q is not a hex address", raw)
	}
	return common.HexToAddress(trimmed), nil
}

func parseOptionalAddress(raw string) (*[20]byte, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	addr, err := parseAddress(raw)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("amount is required")
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}

func formatAddress(addr [20]byte) string {
	return common.Address(addr).Hex()
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
