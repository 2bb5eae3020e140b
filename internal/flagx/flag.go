// Package flagx lets several configuration stages share os.Args: each stage
// filters out the flags it owns before handing them to its own FlagSet.
package flagx

import (
	"flag"
	"os"
	"strconv"
	"strings"
)

// FilterArgs returns the arguments of args that belong to allowedFlags,
// keeping their values. Both "-f value" and "-f=value" forms are kept.
//
// A token that starts with '-' is treated as a value rather than a flag when
// it parses as a number or as a "lat,lon" pair, so "-l -1.2921,36.8219" works.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && isValue(args[i+1]) {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

func isValue(s string) bool {
	if !strings.HasPrefix(s, "-") {
		return true
	}
	for _, part := range strings.Split(s, ",") {
		if _, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err != nil {
			return false
		}
	}
	return true
}

// JSONConfigPath returns the value of -c or -config from args, or "" when
// neither is present.
func JSONConfigPath(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "path to config file")
	fs.StringVar(&config, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return config
}

// JsonConfigFlags is JSONConfigPath applied to the process arguments.
func JsonConfigFlags() string {
	return JSONConfigPath(os.Args[1:])
}
