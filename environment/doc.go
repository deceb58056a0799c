// Package environment resolves the deployment environment an application
// runs in.
//
// The environment is taken from an explicit value (usually the
// -e/--environment flag), then from the INSANE_ENV process variable, and
// falls back to "development".
//
//	env := environment.Resolve(flagValue)
//	if env == environment.Production {
//	    ...
//	}
package environment
