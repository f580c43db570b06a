package wallet

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Luismorlan/pow_ledger/layout"
	"github.com/Luismorlan/pow_ledger/model"
	"github.com/Luismorlan/pow_ledger/service"
	"github.com/Luismorlan/pow_ledger/utils"
	"github.com/cenkalti/backoff"
	"github.com/jroimartin/gocui"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	KEY_BITS        = 2048
	RPC_TIMEOUT     = 10 * time.Second
	CONNECT_RETRIES = 3
)

var ErrNotConnected = errors.New("wallet is not connected to a full node")

// User submits transfers to a full node. The address is derived from the wallet key but the
// ledger never checks signatures or balances.
type Wallet struct {
	Keys           *rsa.PrivateKey
	FullNodeClient service.LedgerServiceClient
	conn           *grpc.ClientConn
	// Nil when running without GUI.
	g *gocui.Gui
}

// NewWallet loads the key at keyPath, creating one when the file doesn't exist.
func NewWallet(keyPath string, g *gocui.Gui) (*Wallet, error) {
	keys, err := utils.ParseKeyFile(keyPath, false, KEY_BITS)
	if err != nil {
		return nil, err
	}
	return &Wallet{Keys: keys, g: g}, nil
}

// GetAddress returns the address other users transfer money to.
func (w *Wallet) GetAddress() string {
	addr, err := utils.PublicKeyToAddress(&w.Keys.PublicKey)
	if err != nil {
		// A key loaded from a valid file always marshals.
		panic(err)
	}
	return addr
}

func (w *Wallet) Log(a ...interface{}) {
	layout.Println(w.g, a...)
}

// SetFullNodeConnection dials the full node and probes it before switching over. Dialing
// doesn't block, so the probe is what tells a dead endpoint apart.
func (w *Wallet) SetFullNodeConnection(ipAddr string, port string) error {
	serverAddr := net.JoinHostPort(ipAddr, port)
	conn, err := grpc.Dial(serverAddr, grpc.WithInsecure())
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", serverAddr, err)
	}
	client := service.NewLedgerServiceClient(conn)
	probe := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), RPC_TIMEOUT)
		defer cancel()
		_, err := client.GetChainLength(ctx, &emptypb.Empty{})
		return err
	}
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), CONNECT_RETRIES)
	if err := backoff.Retry(probe, b); err != nil {
		conn.Close()
		return fmt.Errorf("full node %s is unreachable: %w", serverAddr, err)
	}
	if w.conn != nil {
		w.conn.Close()
	}
	w.conn = conn
	w.FullNodeClient = client
	return nil
}

// GetBalance asks the full node for the balance of this wallet's address.
func (w *Wallet) GetBalance() (float64, error) {
	if w.FullNodeClient == nil {
		return 0, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(context.Background(), RPC_TIMEOUT)
	defer cancel()
	res, err := w.FullNodeClient.GetBalance(ctx, wrapperspb.String(w.GetAddress()))
	if err != nil {
		return 0, err
	}
	return res.GetValue(), nil
}

// TransferMoney submits a transfer from this wallet to recipient. The transfer only lands once
// a full node mines it into a block.
func (w *Wallet) TransferMoney(recipient string, value float64) error {
	if w.FullNodeClient == nil {
		return ErrNotConnected
	}
	tx := model.Transaction{Sender: w.GetAddress(), Recipient: recipient, Amount: value}
	if err := utils.ValidateTransaction(&tx); err != nil {
		return err
	}
	req, err := service.TransactionToStruct(&tx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), RPC_TIMEOUT)
	defer cancel()
	_, err = w.FullNodeClient.SubmitTransaction(ctx, req)
	return err
}

// Sign returns the hex signature of text, joined by single spaces.
func (w *Wallet) Sign(words ...string) (string, error) {
	sig, err := utils.Sign([]byte(strings.Join(words, " ")), w.Keys)
	if err != nil {
		return "", err
	}
	return utils.BytesToHex(sig), nil
}

func (w *Wallet) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}
