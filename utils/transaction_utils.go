package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/Luismorlan/pow_ledger/model"
)

// GetTransactionString is the canonical text of a transaction inside a block hash.
func GetTransactionString(tx *model.Transaction) string {
	return tx.Sender + tx.Recipient + Float64ToString(tx.Amount)
}

// Concat the canonical text of all transactions in order.
func GetTransactionsString(txs []model.Transaction) string {
	var sb strings.Builder
	for i := 0; i < len(txs); i++ {
		sb.WriteString(GetTransactionString(&txs[i]))
	}
	return sb.String()
}

// A transaction is only rejected when its amount is negative or not finite. There is no
// balance, double spending or signature check.
func ValidateTransaction(tx *model.Transaction) error {
	if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
		return fmt.Errorf("%w: amount %v is not finite", ErrInvalidArgument, tx.Amount)
	}
	if tx.Amount < 0 {
		return fmt.Errorf("%w: negative amount %v", ErrInvalidArgument, tx.Amount)
	}
	return nil
}

// CopyTransactions returns a slice that shares no backing array with txs. Never returns nil.
func CopyTransactions(txs []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txs))
	copy(out, txs)
	return out
}
