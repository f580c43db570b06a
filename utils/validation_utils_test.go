package utils

import (
	"errors"
	"testing"

	"github.com/Luismorlan/pow_ledger/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildChain mines n blocks on top of genesis.
func buildChain(t *testing.T, n int, miner string) []model.Block {
	chain := []model.Block{GenesisBlock()}
	for i := 0; i < n; i++ {
		prev := chain[len(chain)-1]
		b, err := NewBlock(prev.Height+1, prev.Hash, 1700000000+float64(i), []model.Transaction{
			{Sender: miner, Recipient: "bob", Amount: float64(i)},
		}, 1, miner)
		require.NoError(t, err)
		mined, _, err := Mine(b, 1, 1<<20, nil)
		require.NoError(t, err)
		chain = append(chain, mined)
	}
	return chain
}

func TestValidateNewBlockAcceptsMinedBlock(t *testing.T) {
	genesis := GenesisBlock()
	b, err := NewBlock(1, genesis.Hash, 1700000000, nil, 1, "")
	require.NoError(t, err)
	mined, _, err := Mine(b, 1, 1<<20, nil)
	require.NoError(t, err)

	assert.True(t, IsNewBlockValid(&genesis, &mined))
	assert.Equal(t, byte('0'), mined.Hash[0])
}

func TestValidateNewBlockRejectsTamperedTimestamp(t *testing.T) {
	chain := buildChain(t, 1, "alice")
	tampered := chain[1]
	tampered.Timestamp++

	err := ValidateNewBlock(&chain[0], &tampered)
	assert.True(t, errors.Is(err, ErrHashMismatch))
	assert.False(t, IsNewBlockValid(&chain[0], &tampered))
}

func TestValidateNewBlockStructuralMismatch(t *testing.T) {
	chain := buildChain(t, 2, "alice")

	err := ValidateNewBlock(&chain[0], &chain[2])
	assert.True(t, errors.Is(err, ErrStructuralMismatch))

	wrongLink := chain[2]
	wrongLink.Height = 1
	wrongLink.Hash = HashBlock(&wrongLink)
	err = ValidateNewBlock(&chain[0], &wrongLink)
	assert.True(t, errors.Is(err, ErrStructuralMismatch))
}

func TestValidateNewBlockIgnoresDifficultyTarget(t *testing.T) {
	genesis := GenesisBlock()
	// Never mined, so the hash most likely misses a difficulty of 8, yet it is consistent.
	b, err := NewBlock(1, genesis.Hash, 1700000000, nil, 8, "")
	require.NoError(t, err)
	assert.True(t, IsNewBlockValid(&genesis, &b))
}

func TestValidateChain(t *testing.T) {
	genesis := GenesisBlock()
	chain := buildChain(t, 4, "alice")
	assert.NoError(t, ValidateChain(chain, &genesis))

	for i := 1; i < len(chain); i++ {
		assert.Equal(t, chain[i-1].Hash, chain[i].PrevHash)
		assert.Equal(t, chain[i-1].Height+1, chain[i].Height)
	}

	assert.True(t, IsChainValid(chain[:1], &genesis))
}

func TestValidateChainRejectsEmptyAndForeignGenesis(t *testing.T) {
	genesis := GenesisBlock()
	err := ValidateChain(nil, &genesis)
	assert.True(t, errors.Is(err, ErrEmptyOrGenesisMismatch))

	chain := buildChain(t, 2, "alice")
	foreign := chain[0]
	foreign.Timestamp = 1
	foreign.Hash = HashBlock(&foreign)
	chain[0] = foreign
	err = ValidateChain(chain, &genesis)
	assert.True(t, errors.Is(err, ErrEmptyOrGenesisMismatch))
}

func TestValidateChainRejectsAnyBrokenLink(t *testing.T) {
	genesis := GenesisBlock()
	chain := buildChain(t, 4, "alice")
	chain[2].Txs[0].Amount = 1000
	err := ValidateChain(chain, &genesis)
	assert.True(t, errors.Is(err, ErrHashMismatch))
}

func TestBlocksEqual(t *testing.T) {
	a := GenesisBlock()
	b := GenesisBlock()
	b.Txs = nil
	assert.True(t, BlocksEqual(&a, &b))
	b.Miner = "x"
	assert.False(t, BlocksEqual(&a, &b))
}
