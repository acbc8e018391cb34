package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/game/command"
	"github.com/cory-johannsen/bastion/internal/game/rules"
	"github.com/cory-johannsen/bastion/internal/game/state"
	"github.com/cory-johannsen/bastion/internal/match"
)

const prompt = "> "

// Console is an interactive session against the AI. It implements
// server.Service: Start blocks until the player quits or input ends.
type Console struct {
	sess   *match.Session
	reg    *command.Registry
	in     *bufio.Scanner
	closer io.Closer
	out    io.Writer
	color  bool
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	done   bool
}

// New creates a Console reading commands from in and writing to out. When
// color is false all ANSI styling is stripped.
//
// Precondition: sess, in, out and logger must be non-nil.
// Postcondition: rules events of sess are echoed to out.
func New(sess *match.Session, in io.Reader, out io.Writer, color bool, logger *zap.Logger) *Console {
	if sess == nil {
		panic("console.New: session must not be nil")
	}
	if in == nil || out == nil {
		panic("console.New: in and out must not be nil")
	}
	if logger == nil {
		panic("console.New: logger must not be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Console{
		sess:   sess,
		reg:    command.DefaultRegistry(),
		in:     bufio.NewScanner(in),
		out:    out,
		color:  color,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	if cl, ok := in.(io.Closer); ok {
		c.closer = cl
	}
	sess.Subscribe(c.onEvent)
	return c
}

// Start shows the board and runs the command loop.
//
// Postcondition: returns nil on quit or end of input.
func (c *Console) Start() error {
	c.println(Colorize(Bold+BrightWhite, "Bastion") + " - type help for commands")
	c.showBoard()
	c.write(prompt)
	for c.in.Scan() {
		if !c.Execute(c.in.Text()) || c.stopped() {
			return nil
		}
		c.write(prompt)
	}
	if c.stopped() {
		return nil
	}
	return c.in.Err()
}

// Stop ends the command loop.
func (c *Console) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	c.done = true
	c.cancel()
	if c.closer != nil {
		_ = c.closer.Close()
	}
}

func (c *Console) stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Execute runs one input line.
//
// Postcondition: returns false when the player asked to quit.
func (c *Console) Execute(line string) bool {
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return true
	}
	cmd, ok := c.reg.Resolve(parsed.Command)
	if !ok {
		if matches := c.reg.Candidates(parsed.Command); len(matches) > 1 {
			names := make([]string, len(matches))
			for i, m := range matches {
				names[i] = m.Name
			}
			c.println(Colorf(Red, "Ambiguous command %q: %s.", parsed.Command, strings.Join(names, ", ")))
			return true
		}
		c.println(Colorf(Red, "Unknown command %q. Type help for a list.", parsed.Command))
		return true
	}
	c.logger.Debug("command", zap.String("handler", cmd.Handler), zap.Strings("args", parsed.Args))

	if cmd.Handler == command.HandlerQuit {
		c.println("Goodbye.")
		return false
	}
	if err := c.dispatch(cmd, parsed.Args); err != nil {
		c.println(Colorize(Red, err.Error()))
	}
	return true
}

func (c *Console) dispatch(cmd *command.Command, args []string) error {
	switch cmd.Handler {
	case command.HandlerMove:
		t, err := command.ParseTarget(cmd, args)
		if err != nil {
			return err
		}
		return c.sess.Move(t.UnitID, t.X, t.Y)
	case command.HandlerAttack:
		t, err := command.ParseTarget(cmd, args)
		if err != nil {
			return err
		}
		return c.sess.Attack(t.UnitID, t.X, t.Y)
	case command.HandlerBuild:
		order, err := command.ParseBuild(cmd, args)
		if err != nil {
			return err
		}
		_, err = c.sess.Build(order.BuildingID, order.Type)
		return err
	case command.HandlerFortify:
		id, err := command.ParseUnit(cmd, args)
		if err != nil {
			return err
		}
		return c.sess.Fortify(id)
	case command.HandlerEnd:
		return c.endTurn()
	case command.HandlerBoard:
		c.showBoard()
	case command.HandlerStatus:
		c.showStatus()
	case command.HandlerUnits:
		c.write(RenderUnits(c.sess.Snapshot()))
	case command.HandlerIncome:
		eng := c.sess.Engine()
		gs := c.sess.Snapshot()
		c.write(RenderIncome(gs, state.Human, eng.ExpectedIncome(state.Human)))
		c.write(RenderIncome(gs, state.AI, eng.ExpectedIncome(state.AI)))
	case command.HandlerSave:
		slot, err := command.ParseSlot(cmd, args)
		if err != nil {
			return err
		}
		if err := c.sess.Save(slot); err != nil {
			return err
		}
		c.println(fmt.Sprintf("Saved to slot %d.", slot))
	case command.HandlerLoad:
		slot, err := command.ParseSlot(cmd, args)
		if err != nil {
			return err
		}
		if err := c.sess.Load(slot); err != nil {
			return err
		}
		c.println(fmt.Sprintf("Loaded slot %d.", slot))
		c.showBoard()
	case command.HandlerSlots:
		return c.showSlots()
	case command.HandlerDelete:
		slot, err := command.ParseSlot(cmd, args)
		if err != nil {
			return err
		}
		if err := c.sess.DeleteSlot(slot); err != nil {
			return err
		}
		c.println(fmt.Sprintf("Deleted slot %d.", slot))
	case command.HandlerHelp:
		c.write(RenderHelp(c.reg))
	default:
		return fmt.Errorf("command %q is not available", cmd.Name)
	}
	return nil
}

func (c *Console) endTurn() error {
	report, err := c.sess.EndTurn(c.ctx)
	if errors.Is(err, match.ErrGameOver) || errors.Is(err, match.ErrNotYourTurn) {
		return err
	}
	c.println(RenderReport(report))
	c.showBoard()
	if err != nil {
		c.logger.Warn("end of match bookkeeping failed", zap.Error(err))
	}
	return nil
}

func (c *Console) showBoard() {
	c.write(RenderBoard(c.sess.Snapshot()))
	c.showStatus()
}

func (c *Console) showStatus() {
	eng := c.sess.Engine()
	c.write(RenderStatus(c.sess.Snapshot(), eng.ExpectedIncome(state.Human), eng.ExpectedIncome(state.AI)))
}

func (c *Console) showSlots() error {
	slots, err := c.sess.Slots()
	if err != nil {
		return err
	}
	var b strings.Builder
	for slot := 1; slot <= command.MaxSaveSlots; slot++ {
		label := "empty"
		for _, s := range slots {
			if s == slot {
				label = "saved"
			}
		}
		fmt.Fprintf(&b, "  slot %d: %s\n", slot, label)
	}
	c.write(b.String())
	return nil
}

func (c *Console) onEvent(ev rules.Event) {
	c.println(RenderEvent(c.sess.Engine().State(), ev))
}

func (c *Console) println(s string) {
	c.write(s + "\n")
}

func (c *Console) write(s string) {
	if !c.color {
		s = StripANSI(s)
	}
	if _, err := io.WriteString(c.out, s); err != nil {
		c.logger.Warn("console write failed", zap.Error(err))
	}
}
