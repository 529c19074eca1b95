// Package config manages user-level settings stored at ~/.hoist/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the error code offset applied by the upgrade commands.
package config
