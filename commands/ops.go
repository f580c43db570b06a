package commands

import (
	"errors"
	"strconv"
	"strings"
)

type Operation int

const PORT_REGEX = "^[0-9]{4,5}$"

const (
	DEFAULT Operation = iota
	// Start mining, infinite loop until explicit cancel.
	START
	// Restart mining when a new tail replaces the tail we mine on.
	RESTART
	// Stop mining completely.
	STOP
	// Record a peer address in the node registry.
	ADD_PEER
	// List all recorded peers.
	LIST_PEER
	// Print the last blocks of the chain.
	SHOW
	// Print the balance of an address.
	BALANCE
	// Put a transaction into the pending pool.
	SUBMIT
	// Render the last blocks of the chain as a graph.
	RENDER
)

// A command contains a operation and many arguments.
type Command struct {
	Op   Operation
	Args []string
}

func isDepth(s string) bool {
	d, err := strconv.Atoi(s)
	return err == nil && d >= 0
}

func (c Command) IsValid() bool {
	switch c.Op {
	case START, RESTART, STOP, LIST_PEER:
		return len(c.Args) == 0
	case ADD_PEER, BALANCE:
		return len(c.Args) == 1
	case SHOW, RENDER:
		return len(c.Args) == 1 && isDepth(c.Args[0])
	case SUBMIT:
		if len(c.Args) != 3 {
			return false
		}
		v, err := strconv.ParseFloat(c.Args[2], 64)
		return err == nil && v >= 0
	default:
		return false
	}
}

// From string, create a command. Unknown verbs are rejected.
func CreateCommand(s string) (Command, error) {
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return Command{}, errors.New("command is empty")
	}
	cmd := Command{}
	switch ss[0] {
	case "start":
		cmd.Op = START
	case "restart":
		cmd.Op = RESTART
	case "stop":
		cmd.Op = STOP
	case "add_peer":
		cmd.Op = ADD_PEER
	case "list_peer":
		cmd.Op = LIST_PEER
	case "show":
		cmd.Op = SHOW
	case "balance":
		cmd.Op = BALANCE
	case "submit":
		cmd.Op = SUBMIT
	case "render":
		cmd.Op = RENDER
	default:
		return Command{}, errors.New("unknown command: " + ss[0])
	}
	cmd.Args = ss[1:]
	if !cmd.IsValid() {
		return Command{}, errors.New("invalid command")
	}
	return cmd, nil
}

// Create a brand new command with default operation.
func NewDefaultCommand() Command {
	return Command{
		Op: DEFAULT,
	}
}

func (c Command) IsDefault() bool {
	return c.Op == DEFAULT
}
