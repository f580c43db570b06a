package utils

import (
	"encoding/hex"
	"strconv"
)

func BytesToHex(bytes []byte) string {
	return hex.EncodeToString(bytes)
}

func HexToBytes(str string) ([]byte, error) {
	bytes, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// Int64ToString renders i in decimal, the form used inside block hashes.
func Int64ToString(i int64) string {
	return strconv.FormatInt(i, 10)
}

// Float64ToString renders f with the fewest digits that parse back to f.
func Float64ToString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
