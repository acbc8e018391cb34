package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/game/state"
	"github.com/cory-johannsen/bastion/internal/match"
)

// Autoplay runs an AI-versus-AI match to completion and prints the result.
// It implements server.Service.
type Autoplay struct {
	sess     *match.Session
	out      io.Writer
	maxTurns int
	color    bool
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewAutoplay creates an Autoplay stopping after maxTurns turns; 0 is
// unlimited.
//
// Precondition: sess, out and logger must be non-nil.
func NewAutoplay(sess *match.Session, out io.Writer, maxTurns int, color bool, logger *zap.Logger) *Autoplay {
	if sess == nil || out == nil || logger == nil {
		panic("console.NewAutoplay: session, out and logger must not be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Autoplay{
		sess:     sess,
		out:      out,
		maxTurns: maxTurns,
		color:    color,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start plays until the match ends, the turn limit is hit or Stop is called.
func (a *Autoplay) Start() error {
	played, err := a.sess.Autoplay(a.ctx, a.maxTurns)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	gs := a.sess.Snapshot()
	eng := a.sess.Engine()
	out := RenderBoard(gs) + RenderStatus(gs, eng.ExpectedIncome(state.Human), eng.ExpectedIncome(state.AI)) +
		fmt.Sprintf("%d turns played\n", played)
	if !a.color {
		out = StripANSI(out)
	}
	if _, werr := io.WriteString(a.out, out); werr != nil {
		a.logger.Warn("console write failed", zap.Error(werr))
	}
	return err
}

// Stop interrupts the match between turns.
func (a *Autoplay) Stop() {
	a.cancel()
}
