package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/visioncraft/conform/internal/projectconfig"
	"github.com/visioncraft/conform/internal/validation"
	"github.com/visioncraft/conform/internal/wizard"
)

func newInitCommand(a *app) *cobra.Command {
	var (
		interactive bool
		force       bool
	)
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default .conform.yaml",
		Long: `Write a .conform.yaml with the default settings to the given directory
(default: the working directory). With --interactive, prompts for the project
name, source layout and build directory first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(dir, projectconfig.FileName)

			cfg := projectconfig.New()
			if interactive {
				answers, err := wizard.RunInitWizard(cmd.InOrStdin(), cmd.OutOrStdout(), wizard.DefaultAnswers(cfg))
				if err != nil {
					return err
				}
				answers.Apply(cfg)
			}

			if err := cfg.Write(path, force); err != nil {
				return err
			}
			if errs, err := validation.ValidateConfigFile(path); err != nil {
				return err
			} else if len(errs) > 0 {
				return fmt.Errorf("generated %s does not validate: %v", path, errs)
			}

			a.printer(cmd).Success("Created " + path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for settings")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .conform.yaml")
	return cmd
}
