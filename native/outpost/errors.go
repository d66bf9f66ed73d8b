package outpost

import "errors"

var (
	ErrNilState                  = errors.New("outpost engine: state not configured")
	ErrNotOwner                  = errors.New("outpost: caller is not the owner")
	ErrOutpostExists             = errors.New("outpost: outpost already exists")
	ErrOutpostNotFound           = errors.New("outpost: outpost not found")
	ErrEmergencyPause            = errors.New("outpost: outpost is paused")
	ErrInvalidName               = errors.New("outpost: name must not be empty")
	ErrInvalidAmount             = errors.New("outpost: amount must be positive")
	ErrInvalidDuration           = errors.New("outpost: duration must be week, month, or year")
	ErrTierNotFound              = errors.New("outpost: tier not found")
	ErrTierNameExists            = errors.New("outpost: tier name already exists")
	ErrSubscriptionNotFound      = errors.New("outpost: subscription not found")
	ErrAlreadySubscribed         = errors.New("outpost: subscriber already has a subscription")
	ErrInsufficientCallerBalance = errors.New("outpost: caller balance too low")
)
