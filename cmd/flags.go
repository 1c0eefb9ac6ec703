package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlags binds flag names to configuration keys so that a flag set on
// the command line overrides the file and environment.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) {
	for flagName, key := range bindings {
		if flag := flags.Lookup(flagName); flag != nil {
			_ = v.BindPFlag(key, flag)
		}
	}
}

// addFlagValidation makes the flag reject values validator refuses at parse
// time.
func addFlagValidation(flags *pflag.FlagSet, flagName string, validator func(string) error) {
	flag := flags.Lookup(flagName)
	if flag == nil {
		return
	}
	flag.Value = &validatingValue{Value: flag.Value, validator: validator}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if err := v.validator(val); err != nil {
		return err
	}
	return v.Value.Set(val)
}

// validatePort accepts 0, which lets the system pick a port.
func validatePort(s string) error {
	port, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", s)
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", port)
	}
	return nil
}

// oneOf returns a validator accepting only the given values.
func oneOf(values ...string) func(string) error {
	return func(s string) error {
		if slices.Contains(values, s) {
			return nil
		}
		return fmt.Errorf("invalid value %q, must be one of: %s", s, strings.Join(values, ", "))
	}
}
