package market

import "errors"

var (
	ErrNilState                  = errors.New("market engine: state not configured")
	ErrInvalidAmount             = errors.New("market: amount must be positive")
	ErrInvalidFeeValue           = errors.New("market: fee basis points out of range")
	ErrInvalidWeight             = errors.New("market: curve weight out of range")
	ErrSupplyCeiling             = errors.New("market: supply exceeds curve ceiling")
	ErrSupplyUnderflow           = errors.New("market: sell exceeds outstanding supply")
	ErrInsufficientVaultBalance  = errors.New("market: redemption vault underfunded")
	ErrInsufficientCallerBalance = errors.New("market: caller balance too low")
	ErrEmergencyPause            = errors.New("market: outpost is paused")
)
