package cli

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

// Confirm asks a yes/no question and returns true only for an explicit
// "y" or "yes". EOF and interrupt count as "no".
func Confirm(prompt string) (bool, error) {
	rl, err := readline.New(prompt + " [y/N]: ")
	if err != nil {
		return false, fmt.Errorf("failed to open prompt: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		// EOF or ^C means "no".
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Ask reads one line of input, returning the fallback when the user
// just presses enter.
func Ask(prompt, fallback string) (string, error) {
	display := prompt
	if fallback != "" {
		display = fmt.Sprintf("%s (%s)", prompt, fallback)
	}
	rl, err := readline.New(display + ": ")
	if err != nil {
		return "", fmt.Errorf("failed to open prompt: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback, nil
	}
	return line, nil
}
