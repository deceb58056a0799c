package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/insane/config"
	"github.com/kbukum/insane/environment"
)

// Section is a configuration sub-tree that lives next to AppConfig in the
// same files, such as the http or grpc server settings.
type Section struct {
	Key      string
	defaults func() any
	load     func(l *config.Loader, env environment.Environment, appName string) (any, error)
}

// ConfigSection describes the sub-tree under key decoded into T.
func ConfigSection[T any](key string) Section {
	return Section{
		Key: key,
		defaults: func() any {
			d := config.Defaults[T]()
			return &d
		},
		load: func(l *config.Loader, env environment.Environment, appName string) (any, error) {
			return config.LoadKey[T](l, key, env, appName)
		},
	}
}

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or generate configuration files",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "generate",
			Short: "Write the default configuration to the local override file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				env := c.environment(cmd)
				loader := c.loader()
				tree, err := c.defaultTree()
				if err != nil {
					return err
				}
				path, err := config.Generate(loader, tree, env, c.hooks.AppName())
				if err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "configuration written to %s\n", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the resolved configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rt, err := c.runtime(cmd)
				if err != nil {
					return err
				}
				tree, err := c.resolvedTree(rt)
				if err != nil {
					return err
				}
				data, err := config.ToYAML(tree)
				if err != nil {
					return err
				}
				_, err = rt.Out.Write(data)
				return err
			},
		},
	)
	return cmd
}

func (c *CLI) defaultTree() (map[string]any, error) {
	cfg := config.Defaults[config.AppConfig]()
	cfg.ApplicationName = c.hooks.AppName()
	tree, err := toTree(&cfg)
	if err != nil {
		return nil, err
	}
	for _, s := range c.sections {
		tree[s.Key] = s.defaults()
	}
	return tree, nil
}

func (c *CLI) resolvedTree(rt *Runtime) (map[string]any, error) {
	tree, err := toTree(rt.Config)
	if err != nil {
		return nil, err
	}
	for _, s := range c.sections {
		v, err := s.load(rt.Loader, rt.Env, c.hooks.AppName())
		if err != nil {
			return nil, err
		}
		tree[s.Key] = v
	}
	return tree, nil
}

// toTree renders cfg into a generic map so extra sections can sit beside it.
func toTree(cfg any) (map[string]any, error) {
	data, err := config.ToYAML(cfg)
	if err != nil {
		return nil, err
	}
	tree := make(map[string]any)
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("config tree: %w", err)
	}
	return tree, nil
}
