package commands

import (
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
)

const (
	// do nothing operation
	NOOP Operation = iota
	// Initiate a money transfer from wallet
	TRANSFER
	// Print user address
	MY_PK
	// Connect a full node with ip address and port
	CONNECT
	// Get my own balance
	GET_BALANCE
	// Sign an arbitrary text with the wallet key
	SIGN
)

var portRegex = regexp.MustCompile(PORT_REGEX)

type ClientCommand struct {
	Op   Operation
	Args []string
}

func (c ClientCommand) IsValid() bool {
	switch c.Op {
	case TRANSFER:
		if len(c.Args) != 2 {
			return false
		}
		v, err := strconv.ParseFloat(c.Args[1], 64)
		return err == nil && v > 0
	case MY_PK, GET_BALANCE:
		return len(c.Args) == 0
	case CONNECT:
		if len(c.Args) != 2 {
			return false
		}
		ip := net.ParseIP(c.Args[0])
		return (ip != nil || c.Args[0] == "localhost") && portRegex.MatchString(c.Args[1])
	case SIGN:
		return len(c.Args) > 0
	default:
		return false
	}
}

func CreateClientCommand(s string) (ClientCommand, error) {
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return ClientCommand{}, errors.New("command is empty")
	}
	cmd := ClientCommand{}
	switch ss[0] {
	case "transfer":
		cmd.Op = TRANSFER
	case "my_pk":
		cmd.Op = MY_PK
	case "connect":
		cmd.Op = CONNECT
	case "get_balance":
		cmd.Op = GET_BALANCE
	case "sign":
		cmd.Op = SIGN
	default:
		cmd.Op = NOOP
	}
	cmd.Args = ss[1:]
	if !cmd.IsValid() {
		return ClientCommand{}, errors.New("invalid command")
	}
	return cmd, nil
}
