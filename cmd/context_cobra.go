package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hydra-dynamix/erasmus/internal/core/entities"
)

var contextCmd = &cobra.Command{
	Use:     "context",
	Aliases: []string{"ctx"},
	Short:   "Manage stored contexts: named snapshots of the three planning fragments",
	GroupID: "planning",
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.AddCommand(
		contextListCmd,
		contextCreateCmd,
		contextDeleteCmd,
		contextShowCmd,
		contextUpdateCmd,
		contextEditCmd,
		contextStoreCmd,
		contextSelectCmd,
		contextLoadCmd,
	)
}

var contextListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		names, err := d.contexts.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			d.report.PrintInfo("no stored contexts")
			return nil
		}
		for _, name := range names {
			d.report.PrintInfo(name)
		}
		return nil
	},
}

var contextCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new context, defaulting each fragment to its packaged template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		rec, err := d.contexts.Create(cmd.Context(), args[0], nil)
		if err != nil {
			return err
		}
		d.report.PrintSuccess("context created", "name", rec.Name)
		return nil
	},
}

var contextDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a stored context",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		if err := d.contexts.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		d.report.PrintSuccess("context deleted", "name", args[0])
		return nil
	},
}

var contextShowCmd = &cobra.Command{
	Use:   "show <name> <architecture|progress|tasks>",
	Short: "Print one fragment of a stored context",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		kind, err := parseKind(args[1])
		if err != nil {
			return err
		}
		content, ok, err := d.contexts.Read(cmd.Context(), args[0], kind)
		if err != nil {
			return err
		}
		if !ok {
			return &entities.NotFoundError{Kind: "fragment", Name: args[0] + "/" + args[1]}
		}
		fmt.Println(content)
		return nil
	},
}

var contextUpdateCmd = &cobra.Command{
	Use:   "update <name> <architecture|progress|tasks> <path-or-->",
	Short: "Replace one fragment's content from a file, or - for stdin",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		kind, err := parseKind(args[1])
		if err != nil {
			return err
		}
		body, err := readBodyArg(args[2])
		if err != nil {
			return err
		}
		if err := d.contexts.Update(cmd.Context(), args[0], kind, body); err != nil {
			return err
		}
		d.report.PrintSuccess("fragment updated", "name", args[0], "kind", args[1])
		return nil
	},
}

var contextEditCmd = &cobra.Command{
	Use:   "edit <name> <architecture|progress|tasks>",
	Short: "Edit one fragment in $EDITOR",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		kind, err := parseKind(args[1])
		if err != nil {
			return err
		}
		content, _, err := d.contexts.Read(cmd.Context(), args[0], kind)
		if err != nil {
			return err
		}
		edited, err := editInteractively(content, string(kind)+".xml")
		if err != nil {
			return err
		}
		if err := d.contexts.Update(cmd.Context(), args[0], kind, edited); err != nil {
			return err
		}
		d.report.PrintSuccess("fragment edited", "name", args[0], "kind", args[1])
		return nil
	},
}

var contextStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Store the live planning files as a new context, named from the architecture <Title>",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		rec, err := d.contexts.Store(cmd.Context())
		if err != nil {
			return err
		}
		d.report.PrintSuccess("context stored", "name", rec.Name)
		return nil
	},
}

var contextSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Prompt for a stored context from the available list, then load it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		names, err := d.contexts.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return fmt.Errorf("no contexts found to select")
		}
		choice, err := d.prompter.PromptChoice("Select a context", names)
		if err != nil {
			return err
		}
		if err := d.contexts.Load(cmd.Context(), choice); err != nil {
			return err
		}
		d.report.PrintSuccess("context loaded", "name", choice)
		return nil
	},
}

var contextLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Copy a stored context onto the live planning files and merge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		if backupRulesFile {
			if err := backupRulesFileIfPresent(d); err != nil {
				d.logger.Warn("backup failed, continuing without one", "error", err)
			}
		}
		if err := d.contexts.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		d.report.PrintSuccess("context loaded", "name", args[0])
		return nil
	},
}

func init() {
	contextLoadCmd.Flags().BoolVar(&backupRulesFile, "backup", false, "copy the rules file to <name>.old before overwriting it")
}

func parseKind(raw string) (entities.Kind, error) {
	switch strings.ToLower(raw) {
	case "architecture", "arch":
		return entities.KindArchitecture, nil
	case "progress":
		return entities.KindProgress, nil
	case "tasks", "task":
		return entities.KindTasks, nil
	default:
		return "", fmt.Errorf("unknown fragment kind %q (want architecture, progress, or tasks)", raw)
	}
}

func readBodyArg(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", arg, err)
	}
	return string(data), nil
}

// editInteractively writes content to a temp file, opens it in $EDITOR
// (falling back to vi), and returns the file's content after the editor
// exits.
func editInteractively(content, suffix string) (string, error) {
	tmp, err := os.CreateTemp("", "erasmus-*-"+suffix)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	editCmd := exec.Command(editor, tmp.Name())
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	if err := editCmd.Run(); err != nil {
		return "", fmt.Errorf("running editor %q: %w", editor, err)
	}

	edited, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("reading edited file: %w", err)
	}
	return string(edited), nil
}
