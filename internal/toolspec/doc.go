// Package toolspec handles parsing and validation of the hoist tools file.
// The file lists the GitHub-released binaries hoist manages and may be
// written in YAML, TOML, or JSON; validation runs against an embedded
// JSON Schema.
package toolspec
