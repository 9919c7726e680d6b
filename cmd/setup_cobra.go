package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hydra-dynamix/erasmus/internal/adapters/paths"
	"github.com/hydra-dynamix/erasmus/internal/core/entities"
)

var setupCmd = &cobra.Command{
	Use:     "setup",
	Short:   "Initialize a project: pick an editor, create a first context, select a protocol",
	GroupID: "setup",
	RunE:    runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(ProjectRoot)
	if err != nil {
		return err
	}
	root := d.resolver.ProjectRoot()

	if _, ok := paths.DetectEditor(root); !ok {
		options := []string{
			string(entities.EditorClaude),
			string(entities.EditorCursor),
			string(entities.EditorWindsurf),
			string(entities.EditorCodex),
		}
		choice, err := d.prompter.PromptChoice("Which editor are you using?", options)
		if err != nil {
			return fmt.Errorf("prompting for editor: %w", err)
		}
		if err := paths.PersistEditorChoice(root, entities.Editor(choice)); err != nil {
			return fmt.Errorf("persisting editor choice: %w", err)
		}
		d.report.PrintSuccess("editor selected", "editor", choice)

		// Rebuild every adapter against the now-resolvable editor rather
		// than patching d.resolver alone: the merge engine, context store,
		// and protocol store were already wired to the pre-choice resolver.
		d, err = buildDeps(root)
		if err != nil {
			return fmt.Errorf("rebuilding after editor choice: %w", err)
		}
	}

	contexts, err := d.contexts.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing contexts: %w", err)
	}
	contextName := "default"
	if len(contexts) == 0 {
		if _, err := d.contexts.Create(cmd.Context(), contextName, nil); err != nil {
			return fmt.Errorf("creating first context: %w", err)
		}
		d.report.PrintSuccess("context created", "name", contextName)
	} else {
		contextName = contexts[0]
	}

	if err := d.contexts.Load(cmd.Context(), contextName); err != nil {
		return fmt.Errorf("loading context %q: %w", contextName, err)
	}
	d.report.PrintSuccess("context loaded", "name", contextName)

	if _, set, _ := d.selection.Get(); !set {
		protocols, err := d.protocols.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing protocols: %w", err)
		}
		protocolName := "standard"
		if len(protocols) > 0 {
			choice, err := d.prompter.PromptChoice("Which protocol should guide the assistant?", protocols)
			if err != nil {
				return fmt.Errorf("prompting for protocol: %w", err)
			}
			protocolName = choice
		}
		if err := d.selection.Set(protocolName); err != nil {
			return fmt.Errorf("selecting protocol %q: %w", protocolName, err)
		}
		d.report.PrintSuccess("protocol selected", "name", protocolName)
	}

	if err := d.engine.Merge(cmd.Context()); err != nil {
		return fmt.Errorf("running initial merge: %w", err)
	}
	d.report.PrintSuccess("setup complete", "rules file", d.resolver.RulesFile())
	return nil
}
