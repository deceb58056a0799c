package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/insane/cli"
)

type testUserCommand struct{}

func (testUserCommand) Spec() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-user",
		Short: "Print the resolved settings a user-facing command sees",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringP("test", "t", "testttt", "value echoed back")
	return cmd
}

func (testUserCommand) Execute(_ context.Context, rt *cli.Runtime, cmd *cobra.Command, _ []string) error {
	v, _ := cmd.Flags().GetString("test")
	_, err := fmt.Fprintf(rt.Out, "test-user: test=%s environment=%s application=%s\n",
		v, rt.Env, rt.Config.ApplicationName)
	return err
}
