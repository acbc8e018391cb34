package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/scripting"
)

const (
	goalAction    = "goal"
	goalScriptKey = "goals"
	boardModule   = "board"
)

// GoalSelector picks one Goal per turn by planning the doctrine's goal
// domain. Preconditions run in a private Lua VM and read the blackboard of
// the current call through the board module.
//
// A GoalSelector is not safe for concurrent use.
type GoalSelector struct {
	scripts *scripting.Manager
	planner *Planner
	logger  *zap.Logger
	bb      *Blackboard
}

// NewGoalSelector loads the doctrine's scripts into a fresh VM.
//
// Precondition: doctrine and logger must be non-nil.
// Postcondition: returns a ready selector, or an error if the scripts fail
// to load.
func NewGoalSelector(doctrine *Doctrine, instLimit int, logger *zap.Logger) (*GoalSelector, error) {
	if doctrine == nil {
		panic("ai.NewGoalSelector: doctrine must not be nil")
	}
	if logger == nil {
		panic("ai.NewGoalSelector: logger must not be nil")
	}
	s := &GoalSelector{
		scripts: scripting.NewManager(logger),
		logger:  logger,
	}
	s.scripts.Register(scripting.Module{Name: boardModule, Funcs: s.boardFuncs()})
	if err := s.scripts.LoadFS(goalScriptKey, doctrine.Scripts, instLimit); err != nil {
		s.scripts.Close()
		return nil, err
	}
	s.planner = NewPlanner(doctrine.Goals, s.scripts, goalScriptKey)
	return s, nil
}

// Select returns the first goal of the ladder whose precondition holds for
// bb, or Advance when the plan yields no goal.
//
// Postcondition: bb.Goal is not modified; the caller assigns the result.
func (s *GoalSelector) Select(bb *Blackboard) Goal {
	s.bb = bb
	defer func() { s.bb = nil }()

	plan := s.planner.Plan()
	if plan.Truncated {
		s.logger.Warn("ai: goal plan truncated", zap.Strings("methods", plan.Methods))
	}
	s.logger.Debug("ai: goal plan", zap.Strings("methods", plan.Methods))
	for _, a := range plan.Actions {
		if a.Action != goalAction {
			continue
		}
		g, err := ParseGoal(a.Target)
		if err != nil {
			s.logger.Warn("ai: plan produced unknown goal", zap.String("goal", a.Target))
			continue
		}
		return g
	}
	return Advance
}

// Close releases the selector's Lua VM.
func (s *GoalSelector) Close() {
	s.scripts.Close()
}

// boardFuncs exposes the blackboard to goal scripts. Every function tolerates
// being called outside Select by returning a zero value.
func (s *GoalSelector) boardFuncs() map[string]lua.LGFunction {
	count := func(f func(bb *Blackboard) int) lua.LGFunction {
		return func(L *lua.LState) int {
			if s.bb == nil {
				L.Push(lua.LNumber(0))
				return 1
			}
			L.Push(lua.LNumber(f(s.bb)))
			return 1
		}
	}
	return map[string]lua.LGFunction{
		"catapult_threat": func(L *lua.LState) int {
			L.Push(lua.LBool(s.bb != nil && s.bb.Threat.Active))
			return 1
		},
		"has_castle": func(L *lua.LState) int {
			side := L.CheckString(1)
			if s.bb == nil {
				L.Push(lua.LFalse)
				return 1
			}
			castle := s.bb.MyCastle
			if side == "enemy" {
				castle = s.bb.EnemyCastle
			}
			L.Push(lua.LBool(castle.IsSome()))
			return 1
		},
		"castle_danger": count(func(bb *Blackboard) int { return bb.CastleDanger() }),
		"enemies_near_castle": func(L *lua.LState) int {
			r := L.CheckInt(1)
			n := 0
			if s.bb != nil {
				if castle, ok := s.bb.MyCastle.Get(); ok {
					n = s.bb.EnemiesWithin(castle.Pos(), r)
				}
			}
			L.Push(lua.LNumber(n))
			return 1
		},
		"melee_near_enemy_castle": func(L *lua.LState) int {
			r := L.CheckInt(1)
			n := 0
			if s.bb != nil {
				if castle, ok := s.bb.EnemyCastle.Get(); ok {
					n = s.bb.MeleeWithin(castle.Pos(), r)
				}
			}
			L.Push(lua.LNumber(n))
			return 1
		},
		"siege_count": count(func(bb *Blackboard) int { return len(bb.MyCatapults) }),
		"gold_tiles":  count(func(bb *Blackboard) int { return len(bb.GoldTiles) }),
		"fortposts":   count(func(bb *Blackboard) int { return bb.MyFortposts() }),
		"engineers":   count(func(bb *Blackboard) int { return len(bb.MyEngineers) }),
		"gold":        count(func(bb *Blackboard) int { return bb.Gold }),
		"units": func(L *lua.LState) int {
			side := L.CheckString(1)
			n := 0
			if s.bb != nil {
				if side == "enemy" {
					n = len(s.bb.EnemyUnits)
				} else {
					n = len(s.bb.MyUnits)
				}
			}
			L.Push(lua.LNumber(n))
			return 1
		},
	}
}
