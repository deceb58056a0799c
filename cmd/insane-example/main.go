// Command insane-example is a small application built on the runtime: an
// HTTP API, a gRPC server with health and reflection, and a custom command.
package main

import (
	"context"
	"os"

	"github.com/kbukum/insane/cli"
	"github.com/kbukum/insane/grpc"
	"github.com/kbukum/insane/server"
)

func main() {
	c := cli.New(&App{},
		cli.WithConfigSection(cli.ConfigSection[server.Config](server.ConfigKey)),
		cli.WithConfigSection(cli.ConfigSection[grpc.Config](grpc.ConfigKey)),
	)
	c.AddCommand(testUserCommand{})
	os.Exit(c.Run(context.Background(), os.Args[1:]))
}
