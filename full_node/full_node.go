package full_node

import (
	"github.com/Luismorlan/pow_ledger/commands"
	"github.com/Luismorlan/pow_ledger/config"
	"github.com/Luismorlan/pow_ledger/ledger"
	"github.com/Luismorlan/pow_ledger/model"
	"github.com/Luismorlan/pow_ledger/utils"
	uuid "github.com/satori/go.uuid"
)

// A full node maintains a ledger and mines blocks on top of it.
type FullNode struct {
	// The ledger it needs to maintain.
	ledger *ledger.Ledger
	// Node config.
	config config.AppConfig
	// A unique identifier of this node. It doesn't impact consensus, only used to name
	// rendered files and log lines.
	uuid string
}

// Create a brand new full node, which contains a genesis block in the chain.
func NewFullNode(c config.AppConfig, opts ...ledger.Option) *FullNode {
	c = c.WithDefaults()
	return &FullNode{
		ledger: ledger.New(c, opts...),
		config: c,
		uuid:   uuid.NewV4().String(),
	}
}

func (f *FullNode) Ledger() *ledger.Ledger {
	return f.ledger
}

func (f *FullNode) ID() string {
	return f.uuid
}

// CreateNewBlock builds a candidate on the tail with every pending transaction and mines it.
// Mining is a really long process and can be interrupted at any time through ctl. The pending
// transactions go back to the pool when no block comes out.
func (f *FullNode) CreateNewBlock(ctl <-chan commands.Command) (model.Block, commands.Command, error) {
	candidate, err := f.ledger.BuildCandidateBlock(f.config.MINER_ADDRESS)
	if err != nil {
		return model.Block{}, commands.NewDefaultCommand(), err
	}
	block, c, err := utils.Mine(candidate, candidate.Difficulty, f.config.MINING_BUDGET, ctl)
	if err != nil {
		f.ledger.RequeueTransactions(candidate.Txs)
		return model.Block{}, c, err
	}
	return block, c, nil
}

// HandleNewBlock appends the block if it extends the tail. The block's transactions go back to
// the pool when it is rejected.
func (f *FullNode) HandleNewBlock(block model.Block) error {
	if err := f.ledger.Append(block); err != nil {
		f.ledger.RequeueTransactions(block.Txs)
		return err
	}
	return nil
}

// HandleCandidateChain replaces the chain with blocks when blocks is longer and valid.
func (f *FullNode) HandleCandidateChain(blocks []model.Block) bool {
	return f.ledger.ReplaceChain(blocks)
}
