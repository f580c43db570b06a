package model

// GenesisPrevHash is the previous hash every genesis block carries, and only a genesis block carries.
const GenesisPrevHash = "0"

type Block struct {
	// Position in the chain, 0 only for genesis.
	Height int64
	// Hash of the previous block in the hex format.
	PrevHash string
	// Seconds since epoch, fixed when the block is built.
	Timestamp float64
	// Transactions for this block, in order.
	Txs []Transaction
	// Address of the miner, may be empty.
	Miner string
	// How many leading hex 0s were required when the block was built.
	Difficulty int
	// Nonce is the miner's challenge for computing the block.
	Nonce int64
	// Hash of this entire block in the hex string format.
	Hash string
}

// Blockchain is an ordered list of blocks starting at genesis.
type Blockchain struct {
	Blocks []Block
}

// Tail returns the block with the maximum height.
func (bc *Blockchain) Tail() Block {
	return bc.Blocks[len(bc.Blocks)-1]
}

// Len returns how many blocks are in the chain, genesis included.
func (bc *Blockchain) Len() int {
	return len(bc.Blocks)
}
