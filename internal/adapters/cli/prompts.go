// Package cli provides the interactive CLI surface: prompts and report
// formatting. The core never calls into this package directly — only the
// cmd subcommands do, through the UserPrompter and ReportFormatter ports.
package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/hydra-dynamix/erasmus/internal/core/usecases"
)

// Prompter implements usecases.UserPrompter over stdin.
type Prompter struct {
	reader *bufio.Reader
}

var _ usecases.UserPrompter = (*Prompter)(nil)

// NewPrompter creates a Prompter reading from reader.
func NewPrompter(reader *bufio.Reader) *Prompter {
	return &Prompter{reader: reader}
}

// PromptString displays prompt and returns the user's input, or
// defaultValue if the input is empty.
func (p *Prompter) PromptString(prompt, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Printf("%s: ", prompt)
	}

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return defaultValue, nil
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue, nil
	}
	return input, nil
}

// PromptChoice displays prompt with the given options and returns the
// option the user selected.
func (p *Prompter) PromptChoice(prompt string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options to choose from")
	}
	if len(options) == 1 {
		return options[0], nil
	}

	fmt.Printf("%s\n", prompt)
	for i, opt := range options {
		fmt.Printf("  %d) %s\n", i+1, opt)
	}
	fmt.Printf("Select (1-%d): ", len(options))

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	input = strings.TrimSpace(input)
	var idx int
	if _, err := fmt.Sscanf(input, "%d", &idx); err != nil || idx < 1 || idx > len(options) {
		return "", fmt.Errorf("invalid selection %q", input)
	}
	return options[idx-1], nil
}

// PromptYesNo displays prompt and returns the user's yes/no answer,
// defaulting to defaultYes if the input is empty.
func (p *Prompter) PromptYesNo(prompt string, defaultYes bool) (bool, error) {
	defaultStr := "n"
	if defaultYes {
		defaultStr = "y"
	}

	fmt.Printf("%s [%s/n]: ", prompt, defaultStr)
	input, err := p.reader.ReadString('\n')
	if err != nil {
		return defaultYes, nil
	}

	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultYes, nil
	}
	return input == "y" || input == "yes", nil
}
