package config

import (
	"reflect"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix returns the process-variable prefix for an application, e.g.
// "my-app" becomes "MY_APP_".
func EnvPrefix(appName string) string {
	r := strings.NewReplacer("-", "_", ".", "_")
	return strings.ToUpper(r.Replace(appName)) + "_"
}

// applyEnv copies prefixed process variables into v. A variable naming a
// whole section is an error.
func applyEnv(v *viper.Viper, environ []string, prefix string) error {
	known := v.AllKeys()
	sort.Strings(known)

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
			continue
		}
		key, isKnown := envKey(strings.ToLower(name[len(prefix):]), known)
		if err := setScalar(v, key, envValue(v, key, isKnown, value)); err != nil {
			return err
		}
	}
	return nil
}

// envKey maps an underscore-separated variable suffix to a config key. Known
// keys win so that database_max_connections resolves to
// database.max_connections; anything else is split on every underscore.
func envKey(suffix string, known []string) (string, bool) {
	for _, k := range known {
		if strings.ReplaceAll(k, ".", "_") == suffix {
			return k, true
		}
	}
	return strings.ReplaceAll(suffix, "_", "."), false
}

// envValue splits space-separated values into lists when the key holds a list
// or is not known at all. Other values stay strings and are converted while
// decoding.
func envValue(v *viper.Viper, key string, isKnown bool, value string) any {
	if isKnown {
		if current := v.Get(key); current != nil && reflect.TypeOf(current).Kind() == reflect.Slice {
			return strings.Fields(value)
		}
		return value
	}
	if strings.Contains(value, " ") {
		return strings.Fields(value)
	}
	return value
}
