package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Packaging scripts may overwrite embed_config.yaml with a site-specific
// configuration before compiling.
//
//go:embed embed_config.yaml
var embeddedConfig []byte
