package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hydra-dynamix/erasmus/internal/core/entities"
)

var protocolCmd = &cobra.Command{
	Use:     "protocol",
	Aliases: []string{"proto"},
	Short:   "Manage protocols: the reusable instruction fragment merged into the rules file",
	GroupID: "planning",
}

func init() {
	rootCmd.AddCommand(protocolCmd)
	protocolCmd.AddCommand(
		protocolListCmd,
		protocolCreateCmd,
		protocolUpdateCmd,
		protocolDeleteCmd,
		protocolShowCmd,
		protocolSelectCmd,
		protocolLoadCmd,
		protocolEditCmd,
		protocolWatchCmd,
	)
}

var protocolListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available protocols (built-in and user-overlay)",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		names, err := d.protocols.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			d.report.PrintInfo("no protocols found")
			return nil
		}
		for _, name := range names {
			d.report.PrintInfo(name)
		}
		return nil
	},
}

var protocolCreateCmd = &cobra.Command{
	Use:   "create <name> <path-or-->",
	Short: "Create a user-overlay protocol from a file, or - for stdin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		body, err := readBodyArg(args[1])
		if err != nil {
			return err
		}
		p, err := d.protocols.Create(cmd.Context(), args[0], body)
		if err != nil {
			return err
		}
		d.report.PrintSuccess("protocol created", "name", p.Name)
		return nil
	},
}

var protocolUpdateCmd = &cobra.Command{
	Use:   "update <name> <path-or-->",
	Short: "Overwrite a user-overlay protocol from a file, or - for stdin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		body, err := readBodyArg(args[1])
		if err != nil {
			return err
		}
		p, err := d.protocols.Update(cmd.Context(), args[0], body)
		if err != nil {
			return err
		}
		d.report.PrintSuccess("protocol updated", "name", p.Name)
		return nil
	},
}

var protocolDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a user-overlay protocol; fails on a built-in name",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		if err := d.protocols.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		d.report.PrintSuccess("protocol deleted", "name", args[0])
		return nil
	},
}

var protocolShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a protocol's body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		p, ok, err := d.protocols.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return &entities.NotFoundError{Kind: "protocol", Name: args[0]}
		}
		fmt.Println(p.Body)
		return nil
	},
}

var protocolSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Prompt for a protocol from the available list, activate it, and merge",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		names, err := d.protocols.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return fmt.Errorf("no protocols found")
		}
		choice, err := d.prompter.PromptChoice("Select a protocol", names)
		if err != nil {
			return err
		}
		return activateProtocol(cmd, d, choice)
	},
}

var protocolLoadCmd = &cobra.Command{
	Use:   "load [name]",
	Short: "Activate a protocol by name and merge; prompts if name is omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			names, err := d.protocols.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("no protocols found")
			}
			choice, err := d.prompter.PromptChoice("Select a protocol", names)
			if err != nil {
				return err
			}
			name = choice
		}
		return activateProtocol(cmd, d, name)
	},
}

var protocolEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a user-overlay protocol's body in $EDITOR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		p, ok, err := d.protocols.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return &entities.NotFoundError{Kind: "protocol", Name: args[0]}
		}
		edited, err := editInteractively(p.Body, args[0]+".xml")
		if err != nil {
			return err
		}
		if _, err := d.protocols.Update(cmd.Context(), args[0], edited); err != nil {
			return err
		}
		d.report.PrintSuccess("protocol edited", "name", args[0])
		return nil
	},
}

var protocolWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Resolve the active protocol (prompting if unset) and run the watcher",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(ProjectRoot)
		if err != nil {
			return err
		}
		if _, set, _ := d.selection.Get(); !set {
			names, err := d.protocols.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("no protocols found")
			}
			choice, err := d.prompter.PromptChoice("Select a protocol", names)
			if err != nil {
				return err
			}
			if err := d.selection.Set(choice); err != nil {
				return err
			}
		}
		return runWatch(cmd, args)
	},
}

// activateProtocol persists name as the active selection and runs an
// immediate merge so the rules file reflects it right away.
func activateProtocol(cmd *cobra.Command, d *deps, name string) error {
	if _, ok, err := d.protocols.Get(cmd.Context(), name); err != nil {
		return err
	} else if !ok {
		return &entities.NotFoundError{Kind: "protocol", Name: name}
	}
	if err := d.selection.Set(name); err != nil {
		return err
	}
	if err := d.engine.Merge(cmd.Context()); err != nil {
		return err
	}
	d.report.PrintSuccess("protocol activated", "name", name)
	return nil
}
