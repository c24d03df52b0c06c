package toolexec

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// ParseCommand splits a configured command line such as
// `cmake --build build --target "tidy-all"` into a Command.
func ParseCommand(line string) (Command, error) {
	if strings.TrimSpace(line) == "" {
		return Command{}, fmt.Errorf("empty command")
	}
	parts, err := shlex.Split(line)
	if err != nil {
		return Command{}, fmt.Errorf("parsing command %q: %w", line, err)
	}
	if len(parts) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	return Command{Name: parts[0], Args: parts[1:]}, nil
}
