package utils

import (
	"fmt"

	"github.com/Luismorlan/pow_ledger/model"
)

// ValidateNewBlock checks that candidate extends prev: height is prev+1, previous hash links to
// prev, and the stored hash matches the block content. The hash is NOT checked against the
// difficulty target.
func ValidateNewBlock(prev *model.Block, candidate *model.Block) error {
	if candidate.Height != prev.Height+1 {
		return fmt.Errorf("%w: height %d after height %d", ErrStructuralMismatch, candidate.Height, prev.Height)
	}
	if candidate.PrevHash != prev.Hash {
		return fmt.Errorf("%w: previous hash %s, tail hash %s", ErrStructuralMismatch, candidate.PrevHash, prev.Hash)
	}
	if expected := HashBlock(candidate); expected != candidate.Hash {
		return fmt.Errorf("%w: stored %s, computed %s", ErrHashMismatch, candidate.Hash, expected)
	}
	return nil
}

func IsNewBlockValid(prev *model.Block, candidate *model.Block) bool {
	return ValidateNewBlock(prev, candidate) == nil
}

// ValidateChain checks that blocks starts with genesis and every block extends the one before.
func ValidateChain(blocks []model.Block, genesis *model.Block) error {
	if len(blocks) == 0 {
		return fmt.Errorf("%w: empty chain", ErrEmptyOrGenesisMismatch)
	}
	if !BlocksEqual(&blocks[0], genesis) {
		return fmt.Errorf("%w: first block hash %s", ErrEmptyOrGenesisMismatch, blocks[0].Hash)
	}
	for i := 1; i < len(blocks); i++ {
		if err := ValidateNewBlock(&blocks[i-1], &blocks[i]); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}

func IsChainValid(blocks []model.Block, genesis *model.Block) bool {
	return ValidateChain(blocks, genesis) == nil
}

// BlocksEqual compares every field, transactions included. A nil and an empty transaction list
// are equal.
func BlocksEqual(a *model.Block, b *model.Block) bool {
	if a.Height != b.Height || a.PrevHash != b.PrevHash || a.Timestamp != b.Timestamp ||
		a.Miner != b.Miner || a.Difficulty != b.Difficulty || a.Nonce != b.Nonce || a.Hash != b.Hash {
		return false
	}
	if len(a.Txs) != len(b.Txs) {
		return false
	}
	for i := range a.Txs {
		if a.Txs[i] != b.Txs[i] {
			return false
		}
	}
	return true
}
