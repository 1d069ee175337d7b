// Package config loads healthwatch configuration from healthwatch.yml and
// the environment, tracking the source of each attribute.
package config
