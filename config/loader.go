package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/insane/environment"
	"github.com/kbukum/insane/errors"
	"github.com/kbukum/insane/validation"
)

// DefaultDir is where configuration files are searched for.
const DefaultDir = ".config"

// Defaulter is implemented by configuration types that fill in their defaults.
type Defaulter interface {
	ApplyDefaults()
}

// Validator is implemented by configuration types with semantic checks beyond
// struct tags.
type Validator interface {
	Validate() error
}

// Loader holds the settings used to resolve configuration. It is immutable
// once built and safe for concurrent use; dotenv files are read into the
// variable layer and never exported to the process environment.
type Loader struct {
	dir       string
	fs        FileSystem
	environ   func() []string
	overrides map[string]any
	envFile   string
}

// Option configures a Loader.
type Option func(*Loader)

// WithDir sets the directory searched for configuration files.
func WithDir(dir string) Option {
	return func(l *Loader) { l.dir = dir }
}

// WithFileSystem replaces the file system, mainly for tests.
func WithFileSystem(fs FileSystem) Option {
	return func(l *Loader) { l.fs = fs }
}

// WithEnviron replaces the source of process variables, mainly for tests.
func WithEnviron(environ func() []string) Option {
	return func(l *Loader) { l.environ = environ }
}

// WithEnvFile sets an explicit dotenv file instead of {dir}/.env.
func WithEnvFile(path string) Option {
	return func(l *Loader) { l.envFile = path }
}

// WithOverride sets a dotted key above every other layer except the
// application name.
func WithOverride(key string, value any) Option {
	return func(l *Loader) { l.overrides[key] = value }
}

// NewLoader creates a Loader reading from DefaultDir on the real file system.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		dir:       DefaultDir,
		fs:        OSFileSystem{},
		environ:   os.Environ,
		overrides: make(map[string]any),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the configuration directory.
func (l *Loader) Dir() string { return l.dir }

// FileSystem returns the file system the loader reads from.
func (l *Loader) FileSystem() FileSystem { return l.fs }

// FileNames returns the shared and local-override file paths.
func (l *Loader) FileNames(env environment.Environment, appName string) (shared, local string) {
	return FileNames(l.dir, env, appName)
}

// Files returns the configuration files that currently exist, in merge order.
func (l *Loader) Files(env environment.Environment, appName string) []string {
	shared, local := l.FileNames(env, appName)
	var found []string
	for _, p := range []string{shared, local} {
		if l.fs.Exists(p) {
			found = append(found, p)
		}
	}
	return found
}

// FileNames returns {dir}/{env}-{app}.yaml and {dir}/{env}-{app}.local.yaml.
func FileNames(dir string, env environment.Environment, appName string) (shared, local string) {
	base := fmt.Sprintf("%s-%s", env, appName)
	return filepath.Join(dir, base+".yaml"), filepath.Join(dir, base+".local.yaml")
}

// Load resolves the full configuration tree into T.
func Load[T any](l *Loader, env environment.Environment, appName string) (*T, error) {
	var cfg T
	applyDefaults(&cfg)

	v, err := l.resolve(cfg, "", env, appName)
	if err != nil {
		return nil, err
	}
	v.Set("application_name", appName)

	if err := decode(v.AllSettings(), &cfg); err != nil {
		return nil, err
	}
	if err := check(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadKey resolves the sub-tree stored under key into T. T's defaults are
// nested under key so the other layers merge against them.
func LoadKey[T any](l *Loader, key string, env environment.Environment, appName string) (*T, error) {
	var cfg T
	applyDefaults(&cfg)

	v, err := l.resolve(map[string]any{key: cfg}, key, env, appName)
	if err != nil {
		return nil, err
	}

	var sub map[string]any
	if raw, ok := v.AllSettings()[key]; ok {
		m, isMap := raw.(map[string]any)
		if !isMap {
			return nil, errors.Configuration(fmt.Sprintf("%s must be a mapping", key))
		}
		sub = m
	}
	if err := decode(sub, &cfg); err != nil {
		return nil, err
	}
	if err := check(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults returns T with its defaults applied, without reading any layer.
func Defaults[T any]() T {
	var cfg T
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg any) {
	if d, ok := cfg.(Defaulter); ok {
		d.ApplyDefaults()
	}
}

// resolve builds a viper instance holding every layer below the identity.
func (l *Loader) resolve(defaults any, key string, env environment.Environment, appName string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	data, err := yaml.Marshal(defaults)
	if err != nil {
		return nil, errors.Configuration("cannot serialize defaults").WithCause(err)
	}
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.Configuration("cannot read defaults").WithCause(err)
	}

	shared, local := l.FileNames(env, appName)
	for _, path := range []string{shared, local} {
		if err := l.mergeFile(v, path); err != nil {
			return nil, err
		}
	}

	environ, err := l.environWithDotenv()
	if err != nil {
		return nil, err
	}
	if err := applyEnv(v, environ, EnvPrefix(appName)); err != nil {
		return nil, err
	}

	for k, val := range l.overrides {
		if err := setScalar(v, k, val); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (l *Loader) mergeFile(v *viper.Viper, path string) error {
	if !l.fs.Exists(path) {
		return nil
	}
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return errors.Configuration(fmt.Sprintf("cannot read %s", path)).WithCause(err)
	}
	var layer map[string]any
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return errors.Configuration(fmt.Sprintf("cannot parse %s", path)).WithCause(err)
	}
	// viper drops keys whose shape differs from what is already merged.
	if err := checkShape(v.AllSettings(), layer, ""); err != nil {
		return errors.Configuration(fmt.Sprintf("cannot merge %s", path)).WithCause(err)
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return errors.Configuration(fmt.Sprintf("cannot parse %s", path)).WithCause(err)
	}
	return nil
}

// checkShape fails when layer puts a scalar where base has a section, or a
// section where base has a scalar.
func checkShape(base, layer map[string]any, prefix string) error {
	for k, val := range layer {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		current, ok := base[strings.ToLower(k)]
		if !ok || current == nil || val == nil {
			continue
		}
		switch {
		case isMapping(current) && !isMapping(val):
			return fmt.Errorf("%s must be a mapping", key)
		case !isMapping(current) && isMapping(val):
			return fmt.Errorf("%s must not be a mapping", key)
		case isMapping(current):
			if err := checkShape(stringMap(current), stringMap(val), key); err != nil {
				return err
			}
		}
	}
	return nil
}

func isMapping(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Map
}

func stringMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out
}

// setScalar sets a single value, refusing to replace a whole section.
func setScalar(v *viper.Viper, key string, value any) error {
	if isMapping(v.Get(key)) && !isMapping(value) {
		return errors.Configuration(fmt.Sprintf("%s must be a mapping", key))
	}
	v.Set(key, value)
	return nil
}

// environWithDotenv returns the process variables with the dotenv file's
// entries appended for names not already set.
func (l *Loader) environWithDotenv() ([]string, error) {
	environ := l.environ()
	path := l.envFile
	if path == "" {
		path = filepath.Join(l.dir, ".env")
		if !l.fs.Exists(path) {
			return environ, nil
		}
	}
	values, err := l.fs.ReadEnv(path)
	if err != nil {
		return nil, errors.Configuration(fmt.Sprintf("cannot load %s", path)).WithCause(err)
	}

	set := make(map[string]bool, len(environ))
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		set[name] = true
	}
	names := make([]string, 0, len(values))
	for name := range values {
		if !set[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		environ = append(environ, name+"="+values[name])
	}
	return environ, nil
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(" "),
		),
	})
	if err != nil {
		return errors.Configuration("cannot build decoder").WithCause(err)
	}
	if err := dec.Decode(input); err != nil {
		return errors.Configuration("configuration does not match the expected shape").WithCause(err)
	}
	return nil
}

func check(cfg any) error {
	if vd, ok := cfg.(Validator); ok {
		if err := vd.Validate(); err != nil {
			return errors.Configuration("invalid configuration").WithCause(err)
		}
	}
	if reflect.Indirect(reflect.ValueOf(cfg)).Kind() == reflect.Struct {
		if err := validation.Validate(cfg); err != nil {
			return errors.Configuration("invalid configuration").WithCause(err)
		}
	}
	return nil
}
