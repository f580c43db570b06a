package ledger

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Luismorlan/pow_ledger/config"
	"github.com/Luismorlan/pow_ledger/model"
	"github.com/Luismorlan/pow_ledger/utils"
	"github.com/jinzhu/copier"
)

// A ledger owns the chain, the pending pool and the peer registry of one node.
type Ledger struct {
	// The chain it needs to maintain. Only ever appended to, or swapped as a whole.
	blockchain *model.Blockchain
	// Transaction pool it needs to maintain. Incoming transactions are added to this pool.
	txPool *model.TransactionPool
	// host:port of known peers. Bookkeeping only.
	nodes map[string]struct{}
	// Schedule parameters.
	config config.AppConfig
	// A single mutex for changing internal state.
	m sync.RWMutex
	// Clock used for candidate timestamps.
	now func() time.Time
}

type Option func(*Ledger)

// WithClock overrides the clock used to stamp candidate blocks.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// Create a brand new ledger, which contains only the genesis block.
func New(c config.AppConfig, opts ...Option) *Ledger {
	pool := model.NewTransactionPool()
	l := &Ledger{
		blockchain: &model.Blockchain{Blocks: []model.Block{Genesis()}},
		txPool:     &pool,
		nodes:      make(map[string]struct{}),
		config:     c.WithDefaults(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Genesis is the fixed first block, identical for every ledger.
func Genesis() model.Block {
	return utils.GenesisBlock()
}

func (l *Ledger) LastBlock() model.Block {
	l.m.RLock()
	defer l.m.RUnlock()
	return utils.CopyBlock(l.blockchain.Tail())
}

func (l *Ledger) ChainLength() int {
	l.m.RLock()
	defer l.m.RUnlock()
	return l.blockchain.Len()
}

// Chain returns a deep copy of the whole chain.
func (l *Ledger) Chain() []model.Block {
	l.m.RLock()
	blocks := l.blockchain.Blocks
	l.m.RUnlock()
	// Blocks in a published chain are never mutated, so the copy can happen unlocked.
	return copyBlocks(blocks)
}

func copyBlocks(blocks []model.Block) []model.Block {
	out := []model.Block{}
	if err := copier.CopyWithOption(&out, &blocks, copier.Option{DeepCopy: true}); err != nil {
		log.Println("deep copy of chain failed, copying by hand:", err)
		out = make([]model.Block, len(blocks))
		for i := range blocks {
			out[i] = utils.CopyBlock(blocks[i])
		}
	}
	for i := range out {
		if out[i].Txs == nil {
			out[i].Txs = []model.Transaction{}
		}
	}
	return out
}

// DifficultyAt is BASE_DIFFICULTY plus one per completed adjustment interval.
func (l *Ledger) DifficultyAt(length int) int {
	return l.config.BASE_DIFFICULTY + length/l.config.ADJUSTMENT_INTERVAL
}

// RewardAt divides BASE_REWARD by one more than the completed adjustment intervals.
func (l *Ledger) RewardAt(length int) int64 {
	return l.config.BASE_REWARD / int64(length/l.config.ADJUSTMENT_INTERVAL+1)
}

func (l *Ledger) Difficulty() int {
	return l.DifficultyAt(l.ChainLength())
}

func (l *Ledger) Reward() int64 {
	return l.RewardAt(l.ChainLength())
}

// EnqueueTransaction puts tx into the pending pool. No balance nor signature is checked.
func (l *Ledger) EnqueueTransaction(tx model.Transaction) error {
	if err := utils.ValidateTransaction(&tx); err != nil {
		return err
	}
	l.m.Lock()
	defer l.m.Unlock()
	l.txPool.Txs = append(l.txPool.Txs, tx)
	return nil
}

// RequeueTransactions puts back transactions taken by BuildCandidateBlock whose block never
// made it into the chain.
func (l *Ledger) RequeueTransactions(txs []model.Transaction) {
	if len(txs) == 0 {
		return
	}
	l.m.Lock()
	defer l.m.Unlock()
	l.txPool.Txs = append(l.txPool.Txs, txs...)
}

// PendingTransactions returns a copy of the pool.
func (l *Ledger) PendingTransactions() []model.Transaction {
	l.m.RLock()
	defer l.m.RUnlock()
	return utils.CopyTransactions(l.txPool.Txs)
}

// BuildCandidateBlock creates the next, un-mined block on top of the tail. The pool is drained
// into the block in one step: transactions arriving later wait for the next block. The caller
// mines the block, then appends it, or requeues its transactions.
func (l *Ledger) BuildCandidateBlock(miner string) (model.Block, error) {
	l.m.Lock()
	tail := l.blockchain.Tail()
	difficulty := l.DifficultyAt(l.blockchain.Len())
	txs := l.txPool.Txs
	l.txPool.Txs = []model.Transaction{}
	l.m.Unlock()

	now := l.now()
	timestamp := float64(now.Unix()) + float64(now.Nanosecond())/float64(time.Second)
	block, err := utils.NewBlock(tail.Height+1, tail.Hash, timestamp, txs, difficulty, miner)
	if err != nil {
		l.RequeueTransactions(txs)
		return model.Block{}, err
	}
	return block, nil
}

// Append adds block to the tail if it extends the current tail.
func (l *Ledger) Append(block model.Block) error {
	l.m.Lock()
	defer l.m.Unlock()

	tail := l.blockchain.Tail()
	if err := utils.ValidateNewBlock(&tail, &block); err != nil {
		return err
	}
	l.blockchain.Blocks = append(l.blockchain.Blocks, utils.CopyBlock(block))
	return nil
}

// ValidateChain checks a candidate chain against the local genesis.
func (l *Ledger) ValidateChain(blocks []model.Block) error {
	genesis := Genesis()
	return utils.ValidateChain(blocks, &genesis)
}

func (l *Ledger) IsChainValid(blocks []model.Block) bool {
	return l.ValidateChain(blocks) == nil
}

// ReplaceChain adopts blocks iff it is strictly longer than the current chain and valid. Only
// the block count is compared, never the accumulated work. The current chain stays readable
// during validation and is swapped in one step on success.
func (l *Ledger) ReplaceChain(blocks []model.Block) bool {
	if len(blocks) <= l.ChainLength() {
		return false
	}
	// Validate our own copy so later changes to blocks by the caller can't reach the chain.
	candidate := &model.Blockchain{Blocks: copyBlocks(blocks)}
	if err := l.ValidateChain(candidate.Blocks); err != nil {
		log.Println("rejected candidate chain:", err)
		return false
	}

	l.m.Lock()
	defer l.m.Unlock()
	// The chain may have grown while the candidate was being validated.
	if candidate.Len() <= l.blockchain.Len() {
		return false
	}
	l.blockchain = candidate
	return true
}

// BalanceOf replays the whole chain for address.
func (l *Ledger) BalanceOf(address string) float64 {
	l.m.RLock()
	blocks := l.blockchain.Blocks
	l.m.RUnlock()
	return utils.Balance(blocks, address)
}

// NormalizeNodeAddress turns "http://host:port/path" or "host:port" into "host:port".
func NormalizeNodeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	raw := address
	if !strings.Contains(raw, "://") {
		raw = "//" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: node address %q: %v", utils.ErrInvalidArgument, address, err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil || host == "" || port == "" {
		return "", fmt.Errorf("%w: node address %q has no host:port", utils.ErrInvalidArgument, address)
	}
	return net.JoinHostPort(host, port), nil
}

// RegisterNode records a peer. Registering the same peer twice is a no-op.
func (l *Ledger) RegisterNode(address string) error {
	addr, err := NormalizeNodeAddress(address)
	if err != nil {
		return err
	}
	l.m.Lock()
	defer l.m.Unlock()
	l.nodes[addr] = struct{}{}
	return nil
}

// Nodes returns the registered peers, sorted.
func (l *Ledger) Nodes() []string {
	l.m.RLock()
	defer l.m.RUnlock()
	nodes := make([]string, 0, len(l.nodes))
	for n := range l.nodes {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}
