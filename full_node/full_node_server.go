package full_node

import (
	"context"
	"errors"
	"log"

	"github.com/Luismorlan/pow_ledger/commands"
	"github.com/Luismorlan/pow_ledger/config"
	"github.com/Luismorlan/pow_ledger/ledger"
	"github.com/Luismorlan/pow_ledger/model"
	"github.com/Luismorlan/pow_ledger/service"
	"github.com/Luismorlan/pow_ledger/utils"
	"github.com/Luismorlan/pow_ledger/visualize"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// This server exposes a full node over gRPC.
type FullNodeServer struct {
	service.UnimplementedLedgerServiceServer

	fullNode *FullNode
	// A command channel to pass command to other part of the system.
	// For now, the only use is to interrupt the mining process on tail change.
	cmd chan commands.Command
}

// Create a new full node server. cmd may be nil when nothing listens for tail changes.
func NewFullNodeServer(c config.AppConfig, cmd chan commands.Command, opts ...ledger.Option) *FullNodeServer {
	return &FullNodeServer{
		fullNode: NewFullNode(c, opts...),
		cmd:      cmd,
	}
}

func (sev *FullNodeServer) FullNode() *FullNode {
	return sev.fullNode
}

func toStatus(err error) error {
	if errors.Is(err, utils.ErrInvalidArgument) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// SubmitTransaction adds the transaction to the pool. Balances and signatures are not checked.
func (sev *FullNodeServer) SubmitTransaction(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	tx, err := service.TransactionFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := sev.fullNode.ledger.EnqueueTransaction(tx); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (sev *FullNodeServer) GetBalance(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "address is empty")
	}
	return wrapperspb.Double(sev.fullNode.ledger.BalanceOf(req.GetValue())), nil
}

func (sev *FullNodeServer) GetLastBlock(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	tail := sev.fullNode.ledger.LastBlock()
	s, err := service.BlockToStruct(&tail)
	if err != nil {
		return nil, toStatus(err)
	}
	return s, nil
}

func (sev *FullNodeServer) GetChainLength(ctx context.Context, req *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	return wrapperspb.Int64(int64(sev.fullNode.ledger.ChainLength())), nil
}

// RegisterNode only records the address; no chain is ever fetched from it.
func (sev *FullNodeServer) RegisterNode(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := sev.fullNode.ledger.RegisterNode(req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (sev *FullNodeServer) ListNodes(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
	nodes := sev.fullNode.ledger.Nodes()
	values := make([]interface{}, 0, len(nodes))
	for _, n := range nodes {
		values = append(values, n)
	}
	l, err := structpb.NewList(values)
	if err != nil {
		return nil, toStatus(err)
	}
	return l, nil
}

// Mine one block and append it.
func (sev *FullNodeServer) Mine(ctl <-chan commands.Command) (commands.Command, error) {
	b, c, err := sev.fullNode.CreateNewBlock(ctl)
	if err != nil {
		return c, err
	}
	if err := sev.fullNode.HandleNewBlock(b); err != nil {
		return c, err
	}
	log.Printf("mined block %d: %s", b.Height, b.Hash)
	return c, nil
}

// MiningLoop mines blocks one after another until a STOP command arrives on ctl. A RESTART
// only abandons the current block.
func (sev *FullNodeServer) MiningLoop(ctl <-chan commands.Command) {
	for {
		res, err := sev.Mine(ctl)
		if err != nil && !errors.Is(err, utils.ErrMiningCancelled) {
			log.Println(err)
		}
		if res.Op == commands.STOP {
			return
		}
	}
}

// ReplaceChain hands a candidate chain to the ledger. When it is adopted the running mining
// task, which now works on a stale tail, is told to restart.
func (sev *FullNodeServer) ReplaceChain(blocks []model.Block) bool {
	if !sev.fullNode.HandleCandidateChain(blocks) {
		return false
	}
	if sev.fullNode.config.REMINE_ON_TAIL_CHANGE && sev.cmd != nil {
		go func() {
			sev.cmd <- commands.Command{Op: commands.RESTART}
		}()
	}
	return true
}

// LastBlocks returns at most d blocks from the tail, oldest first.
func (sev *FullNodeServer) LastBlocks(d int) []model.Block {
	chain := sev.fullNode.ledger.Chain()
	if d < len(chain) {
		chain = chain[len(chain)-d:]
	}
	return chain
}

// Render draws the last d blocks as a graph.
func (sev *FullNodeServer) Render(d int) (string, error) {
	return visualize.Render(sev.LastBlocks(d), sev.fullNode.uuid)
}
