package utils

import "github.com/Luismorlan/pow_ledger/model"

// Balance replays every transaction of every block in chain order. The result can be negative
// because transactions are accepted without any balance check.
func Balance(blocks []model.Block, address string) float64 {
	balance := 0.0
	for i := 0; i < len(blocks); i++ {
		txs := blocks[i].Txs
		for j := 0; j < len(txs); j++ {
			if txs[j].Sender == address {
				balance -= txs[j].Amount
			}
			if txs[j].Recipient == address {
				balance += txs[j].Amount
			}
		}
	}
	return balance
}
