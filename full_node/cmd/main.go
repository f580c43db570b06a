package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/Luismorlan/pow_ledger/commands"
	"github.com/Luismorlan/pow_ledger/config"
	"github.com/Luismorlan/pow_ledger/discovery"
	"github.com/Luismorlan/pow_ledger/full_node"
	"github.com/Luismorlan/pow_ledger/layout"
	"github.com/Luismorlan/pow_ledger/model"
	"github.com/Luismorlan/pow_ledger/service"
	"github.com/Luismorlan/pow_ledger/utils"
	"github.com/jroimartin/gocui"
	"github.com/pterm/pterm"
	"google.golang.org/grpc"
)

var (
	port       *string
	configPath *string
	debugMode  *bool
	mdns       *bool
)

func init() {
	port = flag.String("port", "10000", "port to listen to peers and wallet")
	configPath = flag.String("config_path", "full_node/cmd/config.yaml", "path to full node config")
	debugMode = flag.Bool("debug_mode", false, "Using debug mode will disable fancy GUI.")
	mdns = flag.Bool("mdns", false, "announce this node and register peers found on the local network")
}

// Writes a line to the GUI logger, or to stdout when there is no GUI.
func say(g *gocui.Gui, a ...interface{}) {
	if g == nil {
		pterm.Info.Println(a...)
		return
	}
	layout.Println(g, a...)
}

// Return a gui handle if not in debug mode.
func ListenOnInput(cmd chan commands.Command, debugMode bool) *gocui.Gui {
	if debugMode {
		go ParseCommand(cmd)
		return nil
	}
	g, err := layout.CreateGui(layout.FullNodeParser(cmd), "full_node/cmd/usage.txt")
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

func ParseCommand(cmd chan commands.Command) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		text, _ := reader.ReadString('\n')
		// convert CRLF to LF
		text = strings.Replace(text, "\n", "", -1)
		c, err := commands.CreateCommand(text)
		if err != nil {
			log.Println(err)
			continue
		}
		cmd <- c
	}
}

// Renders blocks as a table, oldest first.
func blockTable(blocks []model.Block) (string, error) {
	data := pterm.TableData{{"Height", "Hash", "Prev", "Timestamp", "Txs", "Miner", "Difficulty", "Nonce"}}
	for _, b := range blocks {
		data = append(data, []string{
			strconv.FormatInt(b.Height, 10),
			b.Hash,
			b.PrevHash,
			utils.Float64ToString(b.Timestamp),
			strconv.Itoa(len(b.Txs)),
			b.Miner,
			strconv.Itoa(b.Difficulty),
			strconv.FormatInt(b.Nonce, 10),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// Handles mining control, peer bookkeeping and chain inspection.
func HandleCommand(cmd chan commands.Command, server *full_node.FullNodeServer, g *gocui.Gui) {
	mining := full_node.NewMiningControl(server)
	l := server.FullNode().Ledger()
	for c := range cmd {
		switch c.Op {
		case commands.START:
			if err := mining.Start(func() { say(g, "mining stopped") }); err != nil {
				say(g, err)
			}
		case commands.RESTART, commands.STOP:
			if err := mining.Signal(c); err != nil {
				say(g, err)
			}
		case commands.ADD_PEER:
			if err := l.RegisterNode(c.Args[0]); err != nil {
				say(g, err)
				continue
			}
			say(g, "registered peer", c.Args[0])
		case commands.LIST_PEER:
			say(g, "peers:", strings.Join(l.Nodes(), ", "))
		case commands.SHOW:
			d, _ := strconv.Atoi(c.Args[0])
			table, err := blockTable(server.LastBlocks(d))
			if err != nil {
				say(g, err)
				continue
			}
			say(g, "\n"+table)
		case commands.BALANCE:
			say(g, fmt.Sprintf("balance of %s: %f", c.Args[0], l.BalanceOf(c.Args[0])))
		case commands.SUBMIT:
			amount, _ := strconv.ParseFloat(c.Args[2], 64)
			tx := model.Transaction{Sender: c.Args[0], Recipient: c.Args[1], Amount: amount}
			if err := l.EnqueueTransaction(tx); err != nil {
				say(g, err)
				continue
			}
			say(g, fmt.Sprintf("queued %s -> %s: %f", tx.Sender, tx.Recipient, tx.Amount))
		case commands.RENDER:
			d, _ := strconv.Atoi(c.Args[0])
			path, err := server.Render(d)
			if err != nil {
				say(g, "failed to render:", err)
				continue
			}
			say(g, "rendered chain to", path)
		default:
			say(g, "Unrecognized command:", c)
		}
	}
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config %s: %v", *configPath, err)
	}
	portNum, err := strconv.Atoi(*port)
	if err != nil {
		log.Fatalf("invalid port %s", *port)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", portNum))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	// A command channel that non-blockingly takes external or internal command
	// and handle it correspondingly.
	cmd := make(chan commands.Command)

	// Create a server with config and a command channel to interrupt mining when tail changes.
	server := full_node.NewFullNodeServer(cfg, cmd)
	grpcServer := grpc.NewServer()
	service.RegisterLedgerServiceServer(grpcServer, server)

	g := ListenOnInput(cmd, *debugMode)
	say(g, fmt.Sprintf("node %s serving at port %s, config: %+v", server.FullNode().ID(), *port, cfg))

	if *mdns {
		mdnsServer, err := discovery.Announce(server.FullNode().ID(), portNum)
		if err != nil {
			log.Fatalf("failed to announce over mDNS: %v", err)
		}
		defer mdnsServer.Shutdown()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := discovery.Browse(ctx, server.FullNode().ID(), server.FullNode().Ledger().RegisterNode); err != nil {
				say(g, "mDNS browsing stopped:", err)
			}
		}()
	}

	go HandleCommand(cmd, server, g)

	if err := grpcServer.Serve(lis); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
