package config

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/insane/environment"
	"github.com/kbukum/insane/errors"
)

// ToYAML renders cfg as two-space indented YAML.
func ToYAML(cfg any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Configuration("cannot render configuration").WithCause(err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Configuration("cannot render configuration").WithCause(err)
	}
	return buf.Bytes(), nil
}

// Generate writes cfg to the local-override file for env and appName,
// replacing any previous content, and returns the path written.
func Generate(l *Loader, cfg any, env environment.Environment, appName string) (string, error) {
	_, local := l.FileNames(env, appName)
	data, err := ToYAML(cfg)
	if err != nil {
		return "", err
	}
	if err := l.fs.WriteFile(local, data); err != nil {
		return "", errors.Configuration("cannot write " + local).WithCause(err)
	}
	return local, nil
}
