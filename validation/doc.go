// Package validation checks structs against `validate:"..."` tags using
// go-playground/validator. Field names in messages follow the mapstructure,
// yaml or json tag of each field, so configuration errors read like the
// YAML that caused them.
//
//	type Config struct {
//	    Port int `yaml:"port" validate:"min=1,max=65535"`
//	}
//	err := validation.Validate(cfg)
package validation
