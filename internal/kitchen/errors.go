package kitchen

import "errors"

var (
	ErrBusy            = errors.New("operation already in progress")
	ErrPremiumRequired = errors.New("premium required")
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidImage    = errors.New("invalid image")
	ErrEmptyName       = errors.New("name is required")
	ErrInvalidDate     = errors.New("expiry date must be YYYY-MM-DD")
	ErrEmptyPrompt     = errors.New("prompt is required")
	ErrScanFailed      = errors.New("could not identify ingredients, please try again")
	ErrGenerateFailed  = errors.New("could not generate recipes, please try again")
	ErrStoresFailed    = errors.New("could not find stores, please try again")
	ErrStylizeFailed   = errors.New("could not edit image, please try again")
	ErrClosed          = errors.New("kitchen closed")
)
