package command

import "sort"

var registry []Command

// RegisterCommand adds a top-level command.
func RegisterCommand(cmd Command) {
	registry = append(registry, cmd)
}

// GetCommand returns a command by name or alias.
func GetCommand(name string) (Command, bool) {
	for _, cmd := range registry {
		if cmd.Name() == name {
			return cmd, true
		}
		for _, a := range cmd.Aliases() {
			if a == name {
				return cmd, true
			}
		}
	}
	return nil, false
}

// AllCommands returns all registered commands sorted by name.
func AllCommands() []Command {
	cmds := append([]Command(nil), registry...)
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}
