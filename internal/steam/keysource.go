package steam

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
)

// CommandKeySource obtains confirmation keys from an external helper
// program. The helper owns the identity secret and the HMAC derivation;
// this application only ever sees the resulting key. Invocation:
//
//	<command> <account-name> <unix-time> <tag>
//
// The key is read from the first line of stdout.
type CommandKeySource struct {
	command string
}

// NewCommandKeySource creates a key source running the given command.
func NewCommandKeySource(command string) *CommandKeySource {
	return &CommandKeySource{command: command}
}

// ConfirmationKey runs the helper and returns the key it prints.
func (s *CommandKeySource) ConfirmationKey(ctx context.Context, account *model.Account, t time.Time, tag string) (string, error) {
	if s.command == "" {
		return "", fmt.Errorf("no key-generator command configured")
	}

	cmd := exec.CommandContext(ctx, s.command,
		account.Name,
		strconv.FormatInt(t.Unix(), 10),
		tag)

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("key-generator command failed: %w", err)
	}

	key := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if key == "" {
		return "", fmt.Errorf("key-generator command returned no key")
	}
	return key, nil
}
