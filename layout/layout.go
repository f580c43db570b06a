package layout

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/Luismorlan/pow_ledger/commands"
	"github.com/jroimartin/gocui"
)

const (
	PAST_CMD_VIEW = "pastcommand"
	INPUT_VIEW    = "input"
	LOGGER_VIEW   = "logger"
	MANUAL_VIEW   = "manual"
)

// The last line typed into the input box, waiting to be echoed by PastCmd.
type echo struct {
	lines []string
	m     sync.Mutex
}

func (e *echo) push(s string) {
	e.m.Lock()
	defer e.m.Unlock()
	e.lines = append(e.lines, s)
}

func (e *echo) drain() []string {
	e.m.Lock()
	defer e.m.Unlock()
	lines := e.lines
	e.lines = nil
	return lines
}

// PastCmd is the ViewManager that logs past command.
type PastCmd struct {
	name string
	echo *echo
}

// Input box for command. parse turns the typed line into a command and hands it over; a
// parse error is echoed back instead.
type Input struct {
	name  string
	echo  *echo
	parse func(s string) error
}

type Logger struct {
	name string
}

type Manual struct {
	name string
	text string
}

func (pc *PastCmd) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom left corner.
	v, err := g.SetView(pc.name, 1, maxY*2/3, maxX/3, maxY-6)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Autoscroll = true
	v.Wrap = true
	for _, s := range pc.echo.drain() {
		fmt.Fprintln(v, "> "+s)
	}
	return nil
}

func (i *Input) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom.
	v, err := g.SetView(i.name, 1, maxY-5, maxX-1, maxY-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Wrap = true
	v.Autoscroll = true
	v.Editor = i
	v.Editable = true
	return nil
}

func (l *Logger) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Right.
	v, err := g.SetView(l.name, maxX/3+1, 1, maxX-1, maxY-6)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Autoscroll = true
	v.Wrap = true
	return nil
}

func (m *Manual) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Top left corner.
	v, err := g.SetView(m.name, 1, 1, maxX/3, maxY*2/3-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Wrap = true
	v.Clear()
	fmt.Fprintln(v, m.text)
	return nil
}

func (i *Input) Edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch {
	case key == gocui.KeyEnter:
		// Remove \n from string.
		s := strings.Replace(v.Buffer(), "\n", "", -1)
		if err := i.parse(s); err != nil {
			s = s + "\n" + err.Error()
		}
		i.echo.push(s)

		// Reset cursor.
		v.Clear()
		v.SetOrigin(0, 0)
		v.SetCursor(0, 0)

	case ch != 0 && mod == 0:
		v.EditWrite(ch)
	case key == gocui.KeySpace:
		v.EditWrite(' ')
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		v.EditDelete(true)
	}
}

func SetFocus(name string) func(g *gocui.Gui) error {
	return func(g *gocui.Gui) error {
		_, err := g.SetCurrentView(name)
		return err
	}
}

// FullNodeParser sends every valid full node command to cmd.
func FullNodeParser(cmd chan<- commands.Command) func(string) error {
	return func(s string) error {
		c, err := commands.CreateCommand(s)
		if err != nil {
			return err
		}
		cmd <- c
		return nil
	}
}

// WalletParser sends every valid wallet command to cmd.
func WalletParser(cmd chan<- commands.ClientCommand) func(string) error {
	return func(s string) error {
		c, err := commands.CreateClientCommand(s)
		if err != nil {
			return err
		}
		cmd <- c
		return nil
	}
}

// Create a GUI. Lines typed into the input box go through parse; the manual file is shown on
// the left.
func CreateGui(parse func(string) error, manualPath string) (*gocui.Gui, error) {
	manual, err := os.ReadFile(manualPath)
	if err != nil {
		return nil, err
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}
	g.Cursor = true

	e := &echo{}
	pc := &PastCmd{name: PAST_CMD_VIEW, echo: e}
	input := &Input{name: INPUT_VIEW, echo: e, parse: parse}
	l := &Logger{name: LOGGER_VIEW}
	m := &Manual{name: MANUAL_VIEW, text: string(manual)}
	focus := gocui.ManagerFunc(SetFocus(INPUT_VIEW))
	g.SetManager(pc, input, l, m, focus)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// Println writes a line into the logger view. Without a GUI it falls back to the standard logger.
func Println(g *gocui.Gui, a ...interface{}) {
	if g == nil {
		log.Println(a...)
		return
	}
	s := fmt.Sprintln(a...)
	g.Update(func(g *gocui.Gui) error {
		v, err := g.View(LOGGER_VIEW)
		if err != nil {
			return err
		}
		fmt.Fprint(v, s)
		return nil
	})
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
