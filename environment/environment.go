package environment

import "os"

// Environment names the deployment environment. Production, Development and
// Test are the known values; any other string is kept verbatim.
type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
	Test        Environment = "test"
)

const (
	// EnvVar is the process variable consulted when no explicit value is given.
	EnvVar = "INSANE_ENV"
	// Default is used when neither an explicit value nor EnvVar is set.
	Default = Development
)

// Parse converts a string into an Environment. It never fails: unknown
// strings become a custom environment carrying the exact input.
func Parse(s string) Environment {
	switch Environment(s) {
	case Production:
		return Production
	case Development:
		return Development
	case Test:
		return Test
	default:
		return Environment(s)
	}
}

// String returns the environment name.
func (e Environment) String() string { return string(e) }

// IsKnown reports whether e is one of the named environments.
func (e Environment) IsKnown() bool {
	switch e {
	case Production, Development, Test:
		return true
	}
	return false
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool { return e == Production }

// Resolve picks the environment to run in. An explicit non-empty value wins,
// then the INSANE_ENV variable, then Development. An empty INSANE_ENV is
// treated as unset.
func Resolve(explicit string) Environment {
	return resolve(explicit, os.LookupEnv)
}

func resolve(explicit string, lookup func(string) (string, bool)) Environment {
	if explicit != "" {
		return Parse(explicit)
	}
	if v, ok := lookup(EnvVar); ok && v != "" {
		return Parse(v)
	}
	return Default
}
