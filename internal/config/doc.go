// Package config provides configuration types, loading, validation and
// hot reload for the path support server.
//
// Configuration is read from a single YAML document. ${VAR} and
// ${VAR:-default} references are substituted from the environment
// before parsing; "$$" escapes a literal dollar sign.
//
//	cfg, err := config.LoadConfig("configs/pathsupport.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    return err
//	}
//
// The Watcher reloads the file on change and hands the new, validated
// configuration to a callback, which the server uses to rebuild the
// route table.
package config
