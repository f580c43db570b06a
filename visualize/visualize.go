package visualize

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Luismorlan/pow_ledger/model"
	"github.com/bradleyjkemp/memviz"
)

// We re-define the visualize model here because the full addresses and hashes are way too long
// to render.
type transaction struct {
	sender    string
	recipient string
	amount    float64
}

type block struct {
	height     int64
	hash       string
	prevHash   string
	miner      string
	difficulty int
	nonce      int64
	txs        []transaction
	next       *block
}

// The string of addresses and hashes is just too long to render, instead we take only first 3
// and last 3 characters and replace the middle part with '...'. E.g. "abcdefghi" will be
// rendered as "abc...ghi"
func shortenString(s string) string {
	if len(s) < 9 {
		return s
	}
	return fmt.Sprintf("%s...%s", s[0:3], s[len(s)-3:])
}

// Addresses are base64 PEM, whose head and tail are the same for every key, so the middle is
// what tells them apart.
func shortenAddress(s string) string {
	if len(s) < 9 {
		return s
	}
	mid := len(s) / 2
	return fmt.Sprintf("...%s...", s[mid-1:mid+2])
}

func blockToBlock(b *model.Block) *block {
	n := &block{
		height:     b.Height,
		hash:       shortenString(b.Hash),
		prevHash:   shortenString(b.PrevHash),
		miner:      shortenAddress(b.Miner),
		difficulty: b.Difficulty,
		nonce:      b.Nonce,
	}
	for i := range b.Txs {
		tx := &b.Txs[i]
		n.txs = append(n.txs, transaction{
			sender:    shortenAddress(tx.Sender),
			recipient: shortenAddress(tx.Recipient),
			amount:    tx.Amount,
		})
	}
	return n
}

// Link the blocks, oldest first. Returns nil for an empty chain.
func constructData(blocks []model.Block) *block {
	var head, prev *block
	for i := range blocks {
		n := blockToBlock(&blocks[i])
		if prev == nil {
			head = n
		} else {
			prev.next = n
		}
		prev = n
	}
	return head
}

// Render writes the blocks as a png next to the dot source in the temp dir and returns the png
// path. id keeps files of several nodes on one machine apart. Needs graphviz' dot on PATH.
func Render(blocks []model.Block, id string) (string, error) {
	buf := &bytes.Buffer{}
	chain := constructData(blocks)
	memviz.Map(buf, chain)

	fileName := filepath.Join(os.TempDir(), "chaindata-"+id)
	outputName := filepath.Join(os.TempDir(), "rendered-chain-"+id+".png")
	if err := os.WriteFile(fileName, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	cmd := exec.Command("dot", "-Tpng", fileName, "-o", outputName)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("dot: %v: %s", err, out)
	}
	return outputName, nil
}
