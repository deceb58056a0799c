// Package cli builds the command line of an application on cobra.
//
// Every application gets the same commands:
//
//	start [--http] [--grpc] [-b ADDR] [-p PORT]   boot and serve until SIGINT/SIGTERM
//	doctor                                        check configuration and connections
//	version                                       print the application version
//	completions <shell>                           shell completion scripts
//	config generate | show                        write or print configuration
//	database create | migrate [-d N] | reset | status | truncate | seed
//
// plus any command registered with AddCommand. The global -e/--environment
// flag selects the environment. Errors are printed as "Error: ..." and Run
// returns ExitFailure; doctor returns 1 when a check fails.
//
// Typical main:
//
//	func main() {
//	    c := cli.New(&App{}, cli.WithConfigSection(cli.ConfigSection[server.Config](server.ConfigKey)))
//	    os.Exit(c.Run(context.Background(), os.Args[1:]))
//	}
package cli
