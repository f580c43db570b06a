package utils

import (
	"fmt"
	"strings"

	"github.com/Luismorlan/pow_ledger/commands"
	"github.com/Luismorlan/pow_ledger/model"
)

const (
	// Fixed timestamp of the genesis block.
	GenesisTimestamp = 1642346961.018641
	// Difficulty recorded in the genesis block, independent of any config.
	GenesisDifficulty = 1
	// A hex digest has this many digits, so no difficulty can exceed it.
	MaxDifficulty = 64
)

// CalculateHash hashes the canonical text nonce|height|prevHash|timestamp|txs, hex encoded.
// Miner and difficulty are not part of the hash.
func CalculateHash(nonce int64, height int64, prevHash string, timestamp float64, txs []model.Transaction) string {
	var sb strings.Builder
	sb.WriteString(Int64ToString(nonce))
	sb.WriteString(Int64ToString(height))
	sb.WriteString(prevHash)
	sb.WriteString(Float64ToString(timestamp))
	sb.WriteString(GetTransactionsString(txs))
	return BytesToHex(SHA256([]byte(sb.String())))
}

// HashBlock recomputes the hash of the block from its own fields.
func HashBlock(block *model.Block) string {
	return CalculateHash(block.Nonce, block.Height, block.PrevHash, block.Timestamp, block.Txs)
}

// NewBlock creates an un-mined block with nonce 0 and its hash filled in. Only a block at
// height 0 may, and must, carry the genesis previous hash.
func NewBlock(height int64, prevHash string, timestamp float64, txs []model.Transaction, difficulty int, miner string) (model.Block, error) {
	if height < 0 {
		return model.Block{}, fmt.Errorf("%w: negative height %d", ErrInvalidArgument, height)
	}
	if height == 0 && prevHash != model.GenesisPrevHash {
		return model.Block{}, fmt.Errorf("%w: genesis must reference %q, got %q", ErrInvalidArgument, model.GenesisPrevHash, prevHash)
	}
	if height > 0 && prevHash == model.GenesisPrevHash {
		return model.Block{}, fmt.Errorf("%w: block at height %d references the genesis sentinel", ErrInvalidArgument, height)
	}
	if difficulty < 0 || difficulty > MaxDifficulty {
		return model.Block{}, fmt.Errorf("%w: difficulty %d", ErrInvalidArgument, difficulty)
	}
	block := model.Block{
		Height:     height,
		PrevHash:   prevHash,
		Timestamp:  timestamp,
		Txs:        CopyTransactions(txs),
		Miner:      miner,
		Difficulty: difficulty,
		Nonce:      0,
	}
	block.Hash = HashBlock(&block)
	return block, nil
}

// GenesisBlock returns the fixed first block shared by every ledger.
func GenesisBlock() model.Block {
	genesis, err := NewBlock(0, model.GenesisPrevHash, GenesisTimestamp, nil, GenesisDifficulty, "")
	if err != nil {
		panic(err)
	}
	return genesis
}

// CopyBlock returns a block that shares no transaction storage with b.
func CopyBlock(b model.Block) model.Block {
	b.Txs = CopyTransactions(b.Txs)
	return b
}

// Mine searches nonces upward from the block's current nonce until the hash starts with
// difficulty hex zeros. The input block is left untouched and a mined copy is returned.
// ctl is polled on every attempt; any command received aborts the search and is handed back
// to the caller. At most budget nonces are tried.
func Mine(block model.Block, difficulty int, budget int64, ctl <-chan commands.Command) (model.Block, commands.Command, error) {
	if difficulty < 0 || difficulty > MaxDifficulty {
		return model.Block{}, commands.NewDefaultCommand(), fmt.Errorf("%w: difficulty %d", ErrInvalidArgument, difficulty)
	}
	if budget <= 0 {
		return model.Block{}, commands.NewDefaultCommand(), fmt.Errorf("%w: mining budget %d", ErrInvalidArgument, budget)
	}

	mined := CopyBlock(block)
	mined.Hash = HashBlock(&mined)
	for tried := int64(1); ; tried++ {
		if HasLeadingZeroDigits(mined.Hash, difficulty) {
			return mined, commands.NewDefaultCommand(), nil
		}
		if tried >= budget {
			return model.Block{}, commands.NewDefaultCommand(), fmt.Errorf("%w: %d nonces tried at difficulty %d", ErrMiningBudgetExhausted, budget, difficulty)
		}
		select {
		case c := <-ctl:
			return model.Block{}, c, ErrMiningCancelled
		default:
		}
		mined.Nonce++
		mined.Hash = HashBlock(&mined)
	}
}

// MatchDifficulty recomputes the block hash and reports whether it meets difficulty.
func MatchDifficulty(block *model.Block, difficulty int) (bool, string) {
	digest := HashBlock(block)
	return HasLeadingZeroDigits(digest, difficulty), digest
}

// HasLeadingZeroDigits reports whether the first difficulty characters of the hex hash are '0'.
func HasLeadingZeroDigits(hash string, difficulty int) bool {
	if difficulty > len(hash) {
		return false
	}
	for i := 0; i < difficulty; i++ {
		if hash[i] != '0' {
			return false
		}
	}
	return true
}
