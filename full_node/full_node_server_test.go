package full_node

import (
	"context"
	"math"
	"net"
	"testing"
	"time"

	"github.com/Luismorlan/pow_ledger/commands"
	"github.com/Luismorlan/pow_ledger/config"
	"github.com/Luismorlan/pow_ledger/ledger"
	"github.com/Luismorlan/pow_ledger/model"
	"github.com/Luismorlan/pow_ledger/service"
	"github.com/Luismorlan/pow_ledger/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func testConfig() config.AppConfig {
	return config.AppConfig{
		BASE_DIFFICULTY:       1,
		MINING_BUDGET:         1 << 22,
		REMINE_ON_TAIL_CHANGE: true,
		MINER_ADDRESS:         "miner",
	}
}

func clockFrom(start int64) ledger.Option {
	next := start
	return ledger.WithClock(func() time.Time {
		next++
		return time.Unix(next, 0)
	})
}

// startServer serves sev over an in-memory listener and returns a connected client.
func startServer(t *testing.T, sev *FullNodeServer) service.LedgerServiceClient {
	lis := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer()
	service.RegisterLedgerServiceServer(grpcServer, sev)
	go grpcServer.Serve(lis)
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithInsecure(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return service.NewLedgerServiceClient(conn)
}

func submit(t *testing.T, client service.LedgerServiceClient, from, to string, amount float64) {
	req, err := service.TransactionToStruct(&model.Transaction{Sender: from, Recipient: to, Amount: amount})
	require.NoError(t, err)
	_, err = client.SubmitTransaction(context.Background(), req)
	require.NoError(t, err)
}

func TestSubmitMineAndQueryBalance(t *testing.T) {
	sev := NewFullNodeServer(testConfig(), nil, clockFrom(1700000000))
	client := startServer(t, sev)
	ctx := context.Background()

	submit(t, client, "A", "B", 10)
	_, err := sev.Mine(nil)
	require.NoError(t, err)
	submit(t, client, "B", "A", 4)
	submit(t, client, "C", "B", 1)
	_, err = sev.Mine(nil)
	require.NoError(t, err)

	b, err := client.GetBalance(ctx, wrapperspb.String("B"))
	require.NoError(t, err)
	assert.Equal(t, 7.0, b.GetValue())
	a, err := client.GetBalance(ctx, wrapperspb.String("A"))
	require.NoError(t, err)
	assert.Equal(t, -6.0, a.GetValue())

	length, err := client.GetChainLength(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), length.GetValue())

	last, err := client.GetLastBlock(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	tail, err := service.BlockFromStruct(last)
	require.NoError(t, err)
	local := sev.FullNode().Ledger().LastBlock()
	assert.True(t, utils.BlocksEqual(&local, &tail))
	assert.Equal(t, "miner", tail.Miner)
	assert.Equal(t, "0", tail.Hash[:1])
}

func TestSubmitTransactionRejectsBadInput(t *testing.T) {
	client := startServer(t, NewFullNodeServer(testConfig(), nil))
	ctx := context.Background()

	malformed, err := structpb.NewStruct(map[string]interface{}{"sender": "A"})
	require.NoError(t, err)
	_, err = client.SubmitTransaction(ctx, malformed)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	negative, err := service.TransactionToStruct(&model.Transaction{Sender: "A", Recipient: "B", Amount: -3})
	require.NoError(t, err)
	_, err = client.SubmitTransaction(ctx, negative)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		req, err := structpb.NewStruct(map[string]interface{}{"sender": "A", "recipient": "B"})
		require.NoError(t, err)
		req.Fields["amount"] = structpb.NewNumberValue(amount)
		_, err = client.SubmitTransaction(ctx, req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "amount %v", amount)
	}

	_, err = client.GetBalance(ctx, wrapperspb.String(""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestNonFiniteAmountsNeverReachTheChain(t *testing.T) {
	sev := NewFullNodeServer(testConfig(), nil, clockFrom(1700000000))
	l := sev.FullNode().Ledger()
	assert.ErrorIs(t, l.EnqueueTransaction(model.Transaction{Sender: "A", Recipient: "B", Amount: math.NaN()}), utils.ErrInvalidArgument)
	assert.ErrorIs(t, l.EnqueueTransaction(model.Transaction{Sender: "C", Recipient: "B", Amount: math.Inf(1)}), utils.ErrInvalidArgument)
	require.NoError(t, l.EnqueueTransaction(model.Transaction{Sender: "B", Recipient: "D", Amount: 5}))
	_, err := sev.Mine(nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, l.BalanceOf("A"))
	assert.Equal(t, -5.0, l.BalanceOf("B"))
	assert.Equal(t, 5.0, l.BalanceOf("D"))
}

func TestRegisterAndListNodes(t *testing.T) {
	client := startServer(t, NewFullNodeServer(testConfig(), nil))
	ctx := context.Background()

	_, err := client.RegisterNode(ctx, wrapperspb.String("http://10.0.0.2:10000"))
	require.NoError(t, err)
	_, err = client.RegisterNode(ctx, wrapperspb.String("10.0.0.1:10000"))
	require.NoError(t, err)
	_, err = client.RegisterNode(ctx, wrapperspb.String("garbage"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	nodes, err := client.ListNodes(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"10.0.0.1:10000", "10.0.0.2:10000"}, nodes.AsSlice())
}

func TestMineCancelledRequeuesTransactions(t *testing.T) {
	c := testConfig()
	c.BASE_DIFFICULTY = utils.MaxDifficulty
	sev := NewFullNodeServer(c, nil)
	l := sev.FullNode().Ledger()
	require.NoError(t, l.EnqueueTransaction(model.Transaction{Sender: "A", Recipient: "B", Amount: 1}))

	ctl := make(chan commands.Command, 1)
	ctl <- commands.Command{Op: commands.STOP}
	res, err := sev.Mine(ctl)
	assert.ErrorIs(t, err, utils.ErrMiningCancelled)
	assert.Equal(t, commands.STOP, res.Op)
	assert.Len(t, l.PendingTransactions(), 1)
	assert.Equal(t, 1, l.ChainLength())
}

func TestMiningLoopStopsOnStop(t *testing.T) {
	c := testConfig()
	c.BASE_DIFFICULTY = utils.MaxDifficulty
	sev := NewFullNodeServer(c, nil)

	ctl := make(chan commands.Command)
	done := make(chan struct{})
	go func() {
		sev.MiningLoop(ctl)
		close(done)
	}()
	ctl <- commands.Command{Op: commands.RESTART}
	ctl <- commands.Command{Op: commands.STOP}
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("mining loop did not stop")
	}
	assert.Equal(t, 1, sev.FullNode().Ledger().ChainLength())
}

func TestReplaceChainRestartsMining(t *testing.T) {
	cmd := make(chan commands.Command, 1)
	local := NewFullNodeServer(testConfig(), cmd, clockFrom(1700000000))
	remote := NewFullNodeServer(testConfig(), nil, clockFrom(1800000000))
	for i := 0; i < 2; i++ {
		_, err := remote.Mine(nil)
		require.NoError(t, err)
	}

	assert.True(t, local.ReplaceChain(remote.FullNode().Ledger().Chain()))
	select {
	case c := <-cmd:
		assert.Equal(t, commands.RESTART, c.Op)
	case <-time.After(5 * time.Second):
		t.Fatal("no restart command after tail change")
	}

	// Equal length is not enough.
	assert.False(t, local.ReplaceChain(remote.FullNode().Ledger().Chain()))
	assert.Equal(t, remote.FullNode().Ledger().LastBlock().Hash, local.FullNode().Ledger().LastBlock().Hash)
}

func TestStaleMinedBlockIsRejected(t *testing.T) {
	sev := NewFullNodeServer(testConfig(), nil, clockFrom(1700000000))
	l := sev.FullNode().Ledger()
	require.NoError(t, l.EnqueueTransaction(model.Transaction{Sender: "A", Recipient: "B", Amount: 1}))
	stale, _, err := sev.FullNode().CreateNewBlock(nil)
	require.NoError(t, err)

	// Someone else extends the chain first.
	_, err = sev.Mine(nil)
	require.NoError(t, err)

	assert.ErrorIs(t, sev.FullNode().HandleNewBlock(stale), utils.ErrStructuralMismatch)
	assert.Equal(t, []model.Transaction{{Sender: "A", Recipient: "B", Amount: 1}}, l.PendingTransactions())
}

func TestLastBlocks(t *testing.T) {
	sev := NewFullNodeServer(testConfig(), nil, clockFrom(1700000000))
	for i := 0; i < 3; i++ {
		_, err := sev.Mine(nil)
		require.NoError(t, err)
	}
	assert.Len(t, sev.LastBlocks(2), 2)
	assert.Len(t, sev.LastBlocks(10), 4)
	assert.Equal(t, int64(3), sev.LastBlocks(1)[0].Height)
	assert.Empty(t, sev.LastBlocks(0))
}
