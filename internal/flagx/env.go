package flagx

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString overwrites *dst with the value of the environment variable name
// when it is set and non-empty.
func EnvString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

// EnvDuration overwrites *dst with the parsed value of name. Both Go duration
// strings ("90s") and bare integers (seconds) are accepted.
func EnvDuration(name string, dst *time.Duration) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", name, v)
	}
	*dst = time.Duration(secs) * time.Second
	return nil
}

// EnvBool overwrites *dst with the parsed value of name.
func EnvBool(name string, dst *bool) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: invalid bool %q", name, v)
	}
	*dst = b
	return nil
}

// EnvUint overwrites *dst with the parsed value of name.
func EnvUint(name string, dst *uint32) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", name, v)
	}
	*dst = uint32(n)
	return nil
}

// EnvList overwrites *dst with the comma separated values of name, trimmed,
// empty items dropped.
func EnvList(name string, dst *[]string) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	*dst = SplitList(v)
}

// SplitList splits a comma separated list, trimming spaces and dropping
// empty items.
func SplitList(v string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
