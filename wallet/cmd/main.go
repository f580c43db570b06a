package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Luismorlan/pow_ledger/commands"
	"github.com/Luismorlan/pow_ledger/layout"
	"github.com/Luismorlan/pow_ledger/wallet"
	"github.com/jroimartin/gocui"
)

var (
	keyPath   *string
	debugMode *bool
)

func init() {
	keyPath = flag.String("key_path", "/tmp/mykey.pem", "RSA file path for your private key")
	debugMode = flag.Bool("debug_mode", false, "Using debug mode will disable fancy GUI.")
}

// Return a gui handle if not in debug mode.
func ListenOnInput(cmd chan commands.ClientCommand, debugMode bool) *gocui.Gui {
	if debugMode {
		go ParseCommand(cmd)
		return nil
	}
	g, err := layout.CreateGui(layout.WalletParser(cmd), "wallet/cmd/usage.txt")
	if err != nil {
		log.Fatalln(err)
	}
	go func() {
		err := g.MainLoop()
		g.Close()
		if err == gocui.ErrQuit {
			os.Exit(0)
		}
		os.Exit(1)
	}()
	return g
}

func main() {
	flag.Parse()
	fmt.Println("keyPath is", *keyPath)

	cmd := make(chan commands.ClientCommand)
	// Start listening on input.
	g := ListenOnInput(cmd, *debugMode)
	w, err := wallet.NewWallet(*keyPath, g)
	if err != nil {
		log.Fatalln(err)
	}
	defer w.Close()
	w.Log("Wallet address: " + w.GetAddress())

	HandleCommand(cmd, w)
}

// Parse command from stdio.
func ParseCommand(cmd chan commands.ClientCommand) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		text, _ := reader.ReadString('\n')
		// convert CRLF to LF
		text = strings.Replace(text, "\n", "", -1)
		c, err := commands.CreateClientCommand(text)
		if err != nil {
			log.Println(err)
			continue
		}
		cmd <- c
	}
}

func HandleCommand(cmd chan commands.ClientCommand, w *wallet.Wallet) {
	for c := range cmd {
		switch c.Op {
		case commands.TRANSFER:
			recipient := c.Args[0]
			value, _ := strconv.ParseFloat(c.Args[1], 64)
			if err := w.TransferMoney(recipient, value); err != nil {
				w.Log("fail to transfer money: " + err.Error())
				continue
			}
			w.Log(fmt.Sprintf("successfully sent transaction to full node, recipient: %s, value: %f", recipient, value))
		case commands.MY_PK:
			w.Log("\n===============DO NOT COPY THIS LINE================\n" + w.GetAddress() + "\n===============DO NOT COPY THIS LINE================")
		case commands.CONNECT:
			ipAddr, port := c.Args[0], c.Args[1]
			if err := w.SetFullNodeConnection(ipAddr, port); err != nil {
				w.Log("failed to connect to full node endpoint: " + err.Error())
				continue
			}
			w.Log("connected full node endpoint " + ipAddr + ":" + port)
		case commands.GET_BALANCE:
			v, err := w.GetBalance()
			if err != nil {
				w.Log("fail to get balance: " + err.Error())
				continue
			}
			w.Log(fmt.Sprintf("your total balance is: %f", v))
		case commands.SIGN:
			sig, err := w.Sign(c.Args...)
			if err != nil {
				w.Log("fail to sign: " + err.Error())
				continue
			}
			w.Log("signature: " + sig)
		default:
			w.Log(fmt.Sprintf("Unimplemented command: %d", c.Op))
		}
	}
}
