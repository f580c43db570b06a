package service

import (
	"fmt"
	"math"

	"github.com/Luismorlan/pow_ledger/model"
	"google.golang.org/protobuf/types/known/structpb"
)

func transactionToMap(tx *model.Transaction) map[string]interface{} {
	return map[string]interface{}{
		"sender":    tx.Sender,
		"recipient": tx.Recipient,
		"amount":    tx.Amount,
	}
}

// TransactionToStruct converts a transaction to its wire form.
func TransactionToStruct(tx *model.Transaction) (*structpb.Struct, error) {
	return structpb.NewStruct(transactionToMap(tx))
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("missing field %q", name)
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", name)
	}
	return str.StringValue, nil
}

func numberField(s *structpb.Struct, name string) (float64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("missing field %q", name)
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %q is not a number", name)
	}
	return num.NumberValue, nil
}

// Integers travel as float64, which is exact up to 2^53.
const maxExactInteger = 1 << 53

func integerField(s *structpb.Struct, name string) (int64, error) {
	v, err := numberField(s, name)
	if err != nil {
		return 0, err
	}
	if math.Trunc(v) != v || v > maxExactInteger || v < -maxExactInteger {
		return 0, fmt.Errorf("field %q is not an exact integer: %v", name, v)
	}
	return int64(v), nil
}

// TransactionFromStruct reads a transaction from its wire form.
func TransactionFromStruct(s *structpb.Struct) (model.Transaction, error) {
	tx := model.Transaction{}
	var err error
	if tx.Sender, err = stringField(s, "sender"); err != nil {
		return model.Transaction{}, err
	}
	if tx.Recipient, err = stringField(s, "recipient"); err != nil {
		return model.Transaction{}, err
	}
	if tx.Amount, err = numberField(s, "amount"); err != nil {
		return model.Transaction{}, err
	}
	return tx, nil
}

// BlockToStruct converts a block to its wire form. Integers travel as numbers, which is exact
// up to 2^53.
func BlockToStruct(b *model.Block) (*structpb.Struct, error) {
	txs := make([]interface{}, 0, len(b.Txs))
	for i := range b.Txs {
		txs = append(txs, transactionToMap(&b.Txs[i]))
	}
	return structpb.NewStruct(map[string]interface{}{
		"height":     b.Height,
		"prev_hash":  b.PrevHash,
		"timestamp":  b.Timestamp,
		"txs":        txs,
		"miner":      b.Miner,
		"difficulty": int64(b.Difficulty),
		"nonce":      b.Nonce,
		"hash":       b.Hash,
	})
}

// BlockFromStruct reads a block from its wire form.
func BlockFromStruct(s *structpb.Struct) (model.Block, error) {
	b := model.Block{}
	var err error
	var difficulty int64
	if b.Height, err = integerField(s, "height"); err != nil {
		return model.Block{}, err
	}
	if difficulty, err = integerField(s, "difficulty"); err != nil {
		return model.Block{}, err
	}
	if b.Nonce, err = integerField(s, "nonce"); err != nil {
		return model.Block{}, err
	}
	if b.Timestamp, err = numberField(s, "timestamp"); err != nil {
		return model.Block{}, err
	}
	if b.PrevHash, err = stringField(s, "prev_hash"); err != nil {
		return model.Block{}, err
	}
	if b.Miner, err = stringField(s, "miner"); err != nil {
		return model.Block{}, err
	}
	if b.Hash, err = stringField(s, "hash"); err != nil {
		return model.Block{}, err
	}
	b.Difficulty = int(difficulty)

	list := s.GetFields()["txs"].GetListValue()
	if list == nil {
		return model.Block{}, fmt.Errorf("field %q is not a list", "txs")
	}
	b.Txs = make([]model.Transaction, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		txStruct := v.GetStructValue()
		if txStruct == nil {
			return model.Block{}, fmt.Errorf("txs[%d] is not an object", i)
		}
		tx, err := TransactionFromStruct(txStruct)
		if err != nil {
			return model.Block{}, fmt.Errorf("txs[%d]: %w", i, err)
		}
		b.Txs = append(b.Txs, tx)
	}
	return b, nil
}
