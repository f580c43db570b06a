package model

type Transaction struct {
	// Address of the payer.
	Sender string
	// Address of the payee.
	Recipient string
	// How much value to transfer. Never negative.
	Amount float64
}

type TransactionPool struct {
	// TransactionPool contains all pending transactions that haven't been put in a block yet.
	// Transactions have no identity, so duplicates are legal and kept.
	Txs []Transaction
}

// NewTransactionPool creates a new transaction pool with no transaction at all.
func NewTransactionPool() TransactionPool {
	return TransactionPool{
		Txs: []Transaction{},
	}
}
