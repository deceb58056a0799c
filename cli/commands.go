package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/insane/doctor"
	"github.com/kbukum/insane/version"
)

func (c *CLI) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Validate the configuration and the connections it describes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			reg := doctor.Default(rt.Loader, rt.Env, c.hooks.AppName())
			for r, check := range c.checks {
				reg.Register(r, check)
			}
			if code := doctor.Run(cmd.Context(), rt.Out, reg, rt.Config); code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
}

func (c *CLI) versionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the application version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := fmt.Fprintln(c.stdout, c.hooks.AppVersion()); err != nil {
				return err
			}
			if build, _ := cmd.Flags().GetBool("build"); build {
				_, err := fmt.Fprintf(c.stdout, "build: %s\n", version.Get())
				return err
			}
			return nil
		},
	}
	cmd.Flags().Bool("build", false, "also print the binary's build details")
	return cmd
}

func (c *CLI) completionsCommand(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:       "completions <bash|zsh|fish|powershell>",
		Short:     "Generate shell completion scripts",
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(c.stdout, true)
			case "zsh":
				return root.GenZshCompletion(c.stdout)
			case "fish":
				return root.GenFishCompletion(c.stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(c.stdout)
			}
		},
	}
}
