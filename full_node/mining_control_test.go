package full_node

import (
	"testing"
	"time"

	"github.com/Luismorlan/pow_ledger/commands"
	"github.com/Luismorlan/pow_ledger/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A server that never finds a block, so the loop only ends on STOP.
func newEndlessControl() *MiningControl {
	c := testConfig()
	c.BASE_DIFFICULTY = utils.MaxDifficulty
	return NewMiningControl(NewFullNodeServer(c, nil))
}

func TestMiningControlStartStop(t *testing.T) {
	m := newEndlessControl()
	assert.ErrorIs(t, m.Signal(commands.Command{Op: commands.STOP}), ErrMiningIdle)

	stopped := make(chan struct{})
	require.NoError(t, m.Start(func() { close(stopped) }))
	assert.True(t, m.Running())
	assert.ErrorIs(t, m.Start(nil), ErrMiningRunning)

	require.NoError(t, m.Signal(commands.Command{Op: commands.RESTART}))
	// The RESTART may still be waiting to be picked up.
	assert.Eventually(t, func() bool {
		return m.Signal(commands.Command{Op: commands.STOP}) == nil
	}, 10*time.Second, time.Millisecond)

	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		t.Fatal("mining loop did not stop")
	}
	assert.False(t, m.Running())
	assert.Equal(t, 1, m.sev.FullNode().Ledger().ChainLength())
}

func TestMiningControlDropsStaleSignal(t *testing.T) {
	m := newEndlessControl()
	stopped := make(chan struct{}, 2)
	onStop := func() { stopped <- struct{}{} }

	require.NoError(t, m.Start(onStop))
	require.NoError(t, m.Signal(commands.Command{Op: commands.STOP}))
	<-stopped

	// A STOP that arrived after the loop had already returned.
	m.ctl <- commands.Command{Op: commands.STOP}

	require.NoError(t, m.Start(onStop))
	assert.Never(t, func() bool { return !m.Running() }, 300*time.Millisecond, 10*time.Millisecond)

	require.NoError(t, m.Signal(commands.Command{Op: commands.STOP}))
	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		t.Fatal("mining loop did not stop")
	}
}
