package utils

import "errors"

var (
	// Malformed block construction inputs.
	ErrInvalidArgument = errors.New("invalid argument")
	// Height or hash link does not follow the previous block.
	ErrStructuralMismatch = errors.New("block does not extend previous block")
	// Stored hash differs from the recomputed one.
	ErrHashMismatch = errors.New("block hash is invalid")
	// Candidate chain is empty or starts from a different genesis.
	ErrEmptyOrGenesisMismatch = errors.New("chain is empty or genesis differs")
	// Mining was interrupted by a command.
	ErrMiningCancelled = errors.New("mining cancelled")
	// No nonce within the iteration budget satisfied the difficulty.
	ErrMiningBudgetExhausted = errors.New("mining budget exhausted")
)
