package ui

import (
	"fmt"
	"strings"
)

type command struct {
	name    string
	aliases []string
	args    string
	help    string
	run     func(arg string)
}

// parseCommand splits "/name arg..." input. ok is false for plain chat text.
func parseCommand(input string) (name, arg string, ok bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", "", false
	}
	name, arg, _ = strings.Cut(input, " ")
	return strings.ToLower(name), strings.TrimSpace(arg), true
}

func findCommand(cmds []command, name string) (command, bool) {
	for _, c := range cmds {
		if c.name == name {
			return c, true
		}
		for _, alias := range c.aliases {
			if alias == name {
				return c, true
			}
		}
	}
	return command{}, false
}

func helpText(cmds []command) string {
	var b strings.Builder
	b.WriteString("Here are some commands you can use:\n")
	for _, c := range cmds {
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		fmt.Fprintf(&b, "- %s: %s\n", usage, c.help)
	}
	return b.String()
}
