// Package flagx lets several components parse their own subset of the
// command line without tripping over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// Spec names the flags a component owns. Values take an argument, either
// as "-f value" or "-f=value". Bools never consume the following argument,
// so "-e false" must be written as "-e=false".
type Spec struct {
	Values []string
	Bools  []string
}

// Filter returns the subset of args that belongs to s, in order, with the
// value of each value flag attached.
func (s Spec) Filter(args []string) []string {
	values := make(map[string]struct{}, len(s.Values))
	for _, f := range s.Values {
		values[f] = struct{}{}
	}
	bools := make(map[string]struct{}, len(s.Bools))
	for _, f := range s.Bools {
		bools[f] = struct{}{}
	}

	owned := func(name string) bool {
		_, v := values[name]
		_, b := bools[name]
		return v || b
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			if owned(strings.SplitN(arg, "=", 2)[0]) {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := bools[arg]; ok {
			filtered = append(filtered, arg)
			continue
		}

		if _, ok := values[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// FilterArgs is Spec{Values: allowedFlags}.Filter(args).
func FilterArgs(args []string, allowedFlags []string) []string {
	return Spec{Values: allowedFlags}.Filter(args)
}

// ConfigFile returns the path given with -c or -config in os.Args, or ""
// when neither is present. If both appear, the last one wins.
func ConfigFile() string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config"}))

	return path
}
