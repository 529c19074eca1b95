// Package platform identifies the running OS/architecture pair and provides
// cross-platform filesystem helpers. Platform keys take the "os-arch" form
// (e.g. "linux-amd64") with alias tables covering the spellings release
// artifacts commonly use (x86_64, aarch64, macos). Chmod is a no-op on
// Windows, which has no Unix-style permission bits.
package platform
