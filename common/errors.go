package common

import "github.com/pkg/errors"

var (
	ErrorInvalidValue = errors.New("invalid value")

	// ErrorInsufficientData means the series is too short for the requested
	// window or trim size. The render pass for that display must be aborted.
	ErrorInsufficientData = errors.New("insufficient data")

	// ErrorDegenerateScale means the series maximum is not positive, so it
	// cannot be mapped onto a positive pixel height. Callers skip the graph.
	ErrorDegenerateScale = errors.New("degenerate scale")

	ErrorNoData         = errors.New("no data")
	ErrorUnknownMode    = errors.New("unknown mode")
	ErrorUnknownDisplay = errors.New("unknown display type")
	ErrorUnknownRegion  = errors.New("unknown region")
	ErrorUnknownTariff  = errors.New("unknown tariff")
	ErrorRetryLimit     = errors.New("API retry limit exceeded")
)
