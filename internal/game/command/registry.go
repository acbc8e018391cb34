package command

import (
	"fmt"
	"sort"
	"strings"
)

// Registry resolves typed words to commands. A word resolves when it is a
// command name, an alias, or a prefix of exactly one command name.
type Registry struct {
	lookup map[string]*Command // names and aliases
	sorted []*Command          // by name
}

// NewRegistry indexes cmds.
//
// Precondition: names and aliases are lowercase.
// Postcondition: Returns an error when any name or alias is claimed twice.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{lookup: make(map[string]*Command, len(cmds)*3)}
	owner := map[string]string{}
	claim := func(word, by string, alias bool) error {
		if prev, taken := owner[word]; taken {
			if !alias {
				return fmt.Errorf("duplicate command name: %q (already used by %q)", word, prev)
			}
			return fmt.Errorf("duplicate alias %q: used by %q and %q", word, prev, by)
		}
		owner[word] = by
		return nil
	}

	for i := range cmds {
		cmd := &cmds[i]
		if err := claim(cmd.Name, cmd.Name, false); err != nil {
			return nil, err
		}
		r.lookup[cmd.Name] = cmd
		r.sorted = append(r.sorted, cmd)
	}
	for i := range cmds {
		cmd := &cmds[i]
		for _, alias := range cmd.Aliases {
			if err := claim(alias, cmd.Name, true); err != nil {
				return nil, err
			}
			r.lookup[alias] = cmd
		}
	}
	sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].Name < r.sorted[j].Name })
	return r, nil
}

// DefaultRegistry returns a Registry of BuiltinCommands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve finds the command for word.
//
// Postcondition: Returns (nil, false) for unknown and ambiguous words.
func (r *Registry) Resolve(word string) (*Command, bool) {
	if cmd, ok := r.lookup[word]; ok {
		return cmd, true
	}
	if c := r.Candidates(word); len(c) == 1 {
		return c[0], true
	}
	return nil, false
}

// Candidates returns the commands whose name starts with prefix, by name.
// An empty prefix matches nothing.
func (r *Registry) Candidates(prefix string) []*Command {
	if prefix == "" {
		return nil
	}
	var out []*Command
	for _, cmd := range r.sorted {
		if strings.HasPrefix(cmd.Name, prefix) {
			out = append(out, cmd)
		}
	}
	return out
}

// Commands returns every command sorted by name.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.sorted...)
}

// CommandsByCategory groups Commands by category.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.sorted {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}
