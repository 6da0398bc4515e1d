// Package flagx contains helpers for layered configuration: filtering the
// command line down to the flags a component owns, locating the JSON config
// file, and overlaying values from environment variables.
package flagx

import (
	"flag"
	"os"
	"slices"
	"strings"
)

// Owned lists the flags one config layer parses. Names carry no leading
// dash. Switches are boolean flags: like the flag package, they only take a
// value in the -name=value form, so the argument after them is never theirs.
type Owned struct {
	Valued   []string
	Switches []string
}

// lookup reports whether arg (-name or --name) is owned and whether it is a
// switch.
func (o Owned) lookup(arg string) (isSwitch, ok bool) {
	name := strings.TrimLeft(arg, "-")
	if name == "" || len(arg)-len(name) > 2 {
		return false, false
	}
	if slices.Contains(o.Switches, name) {
		return true, true
	}
	return false, slices.Contains(o.Valued, name)
}

// FilterArgs keeps the owned flags from args, with their values, and drops
// the rest, so several flag sets can share one command line. Both -name and
// --name spellings are recognized. A valued flag takes the next argument as
// its value, as flag.FlagSet does. Filtering stops at "--".
//
//	FilterArgs([]string{"-c", "cfg.json", "-seed-admin", "-a", ":3001"},
//		Owned{Valued: []string{"a"}, Switches: []string{"seed-admin"}})
//	// []string{"-seed-admin", "-a", ":3001"}
func FilterArgs(args []string, owned Owned) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		if head, _, found := strings.Cut(arg, "="); found {
			if _, ok := owned.lookup(head); ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		isSwitch, ok := owned.lookup(arg)
		if !ok {
			continue
		}
		filtered = append(filtered, arg)
		if !isSwitch && i+1 < len(args) {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// JsonConfigFlags returns the config file path given with -c or -config, or
// an empty string. Other arguments are ignored.
func JsonConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], Owned{Valued: []string{"c", "config"}})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}
