// Package cli implements the foodshare command-line interface.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Role is who a command is meant for. It only affects help output.
type Role string

const (
	RoleAny       Role = ""
	RoleDonor     Role = "donor"
	RoleRecipient Role = "recipient"
	RoleVolunteer Role = "volunteer"
	RoleSponsor   Role = "sponsor"
	RoleAdmin     Role = "admin"
)

// Command represents a CLI command with common functionality
type Command struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	Role        Role
	Keywords    []string
	Run         func(ctx context.Context, app *App, args []string) error
}

// newFlagSet creates a flag set for the named command that reports to
// app.Err and returns errors instead of exiting.
func newFlagSet(app *App, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(app.Err)
	fs.Usage = func() {
		fmt.Fprintf(app.Err, "Run 'foodshare help %s' for usage and examples.\n\nFLAGS:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

// PrintUsage prints standardized usage information
func (c *Command) PrintUsage(w io.Writer) {
	fmt.Fprintf(w, "%s\n\n", c.Description)
	fmt.Fprintf(w, "USAGE:\n    %s\n", c.Usage)
	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nEXAMPLES:\n")
		for _, example := range c.Examples {
			fmt.Fprintf(w, "    %s\n", example)
		}
	}
}

func (c *Command) matches(q string) bool {
	if strings.Contains(strings.ToLower(c.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Description), q) {
		return true
	}
	if strings.Contains(string(c.Role), q) {
		return true
	}
	for _, kw := range c.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}

// Registry holds the commands in registration order.
type Registry struct {
	commands []*Command
	byName   map[string]*Command
}

// NewRegistry creates a Registry with every foodshare command.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Command)}
	for _, c := range defaultCommands(r) {
		r.Register(c)
	}
	return r
}

// Register adds a command, replacing any with the same name.
func (r *Registry) Register(cmd *Command) {
	if _, ok := r.byName[cmd.Name]; !ok {
		r.commands = append(r.commands, cmd)
	} else {
		for i, c := range r.commands {
			if c.Name == cmd.Name {
				r.commands[i] = cmd
			}
		}
	}
	r.byName[cmd.Name] = cmd
}

// Lookup returns the named command.
func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Search returns commands matching query, optionally limited to role.
// An empty query returns every command. Matching is case-insensitive
// substring on name, description, role and keywords.
func (r *Registry) Search(query string, role Role) []*Command {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []*Command
	for _, c := range r.commands {
		if role != RoleAny && c.Role != RoleAny && c.Role != role {
			continue
		}
		if q == "" || c.matches(q) {
			out = append(out, c)
		}
	}
	return out
}

// ErrUsage marks a command line that could not be understood.
var ErrUsage = errors.New("usage")

// Execute runs the command named by args[0].
func (r *Registry) Execute(ctx context.Context, app *App, args []string) error {
	if len(args) < 1 {
		r.PrintHelp(app.Err, r.commands)
		return fmt.Errorf("%w: no command specified", ErrUsage)
	}

	name := args[0]
	switch name {
	case "-h", "--help":
		name = "help"
	}

	cmd, ok := r.byName[name]
	if !ok {
		if suggestions := r.Search(name, RoleAny); len(suggestions) > 0 {
			r.PrintHelp(app.Err, suggestions)
		}
		return fmt.Errorf("%w: unknown command: %s", ErrUsage, name)
	}

	err := cmd.Run(ctx, app, args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// PrintHelp lists cmds grouped by role.
func (r *Registry) PrintHelp(w io.Writer, cmds []*Command) {
	fmt.Fprintln(w, "foodshare - surplus food donation matching")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    foodshare [-config file] [-store driver] [-db path] <command> [arguments]")

	groups := make(map[Role][]*Command)
	var roles []Role
	for _, c := range cmds {
		if _, ok := groups[c.Role]; !ok {
			roles = append(roles, c.Role)
		}
		groups[c.Role] = append(groups[c.Role], c)
	}
	sort.SliceStable(roles, func(i, j int) bool { return roles[i] < roles[j] })

	for _, role := range roles {
		title := "GENERAL"
		if role != RoleAny {
			title = strings.ToUpper(string(role))
		}
		fmt.Fprintf(w, "\n%s:\n", title)
		for _, c := range groups[role] {
			fmt.Fprintf(w, "    %-10s %s\n", c.Name, c.Description)
		}
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'foodshare <command> -h' for more information on a command.")
	fmt.Fprintln(w, "Run 'foodshare help <word>' to search commands.")
}
