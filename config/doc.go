// Package config resolves layered application configuration.
//
// Layers, from lowest to highest precedence:
//
//  1. defaults of the target type (ApplyDefaults)
//  2. {dir}/{env}-{app}.yaml
//  3. {dir}/{env}-{app}.local.yaml
//  4. process variables prefixed with the upper-cased application name,
//     e.g. MY_APP_DATABASE_URI for database.uri
//  5. explicit overrides (command-line flags)
//  6. application_name, always set to the application identity
//
// Missing files are skipped. Malformed files, values that do not fit the
// target type and failed validation are CONFIGURATION_ERRORs.
//
//	loader := config.NewLoader(config.WithDir(".config"))
//	cfg, err := config.Load[config.AppConfig](loader, env, "my-app")
//	httpCfg, err := config.LoadKey[server.Config](loader, "http", env, "my-app")
package config
