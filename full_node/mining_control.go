package full_node

import (
	"errors"
	"sync/atomic"

	"github.com/Luismorlan/pow_ledger/commands"
)

var (
	ErrMiningRunning = errors.New("mining has already been started")
	ErrMiningIdle    = errors.New("no running mining task to be restart or shut")
	ErrSignalPending = errors.New("a mining signal is already pending")
)

// MiningControl starts the mining loop of a server and relays STOP/RESTART to it.
type MiningControl struct {
	sev *FullNodeServer
	// A separate control is needed to make sure the command loop is non-blocking
	// when we just want to restart task.
	ctl     chan commands.Command
	running atomic.Bool
}

func NewMiningControl(sev *FullNodeServer) *MiningControl {
	return &MiningControl{
		sev: sev,
		ctl: make(chan commands.Command, 1),
	}
}

func (m *MiningControl) Running() bool {
	return m.running.Load()
}

// Start launches the mining loop. onStop, if not nil, runs after the loop returned.
func (m *MiningControl) Start(onStop func()) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrMiningRunning
	}
	// A signal relayed while the previous loop was already returning is stale.
	for drained := false; !drained; {
		select {
		case <-m.ctl:
		default:
			drained = true
		}
	}
	go func() {
		m.sev.MiningLoop(m.ctl)
		m.running.Store(false)
		if onStop != nil {
			onStop()
		}
	}()
	return nil
}

// Signal hands c to the running loop without blocking. At most one signal waits at a time.
func (m *MiningControl) Signal(c commands.Command) error {
	if !m.running.Load() {
		return ErrMiningIdle
	}
	select {
	case m.ctl <- c:
		return nil
	default:
		return ErrSignalPending
	}
}
