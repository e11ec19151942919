package types

import errorsmod "cosmossdk.io/errors"

// Codespace is the error codespace for every mental poker sentinel.
const Codespace = "mentalpoker"

// Sentinel errors shared by the engine and both card schemes.
var (
	ErrInvalidRequest  = errorsmod.Register(Codespace, 1, "invalid request")
	ErrInvalidRange    = errorsmod.Register(Codespace, 2, "value outside message space")
	ErrRetryExhausted  = errorsmod.Register(Codespace, 3, "arithmetic retry limit exhausted")
	ErrDegenerateInput = errorsmod.Register(Codespace, 4, "degenerate input")
)
