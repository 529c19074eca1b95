package platform

import (
	"runtime"
	"strings"
)

// osAliasTable maps a GOOS value to the spellings release artifacts
// commonly use for it.
var osAliasTable = map[string][]string{
	"darwin":  {"macos", "macosx", "osx"},
	"windows": {"win", "win32", "win64", "mingw"},
}

// archAliasTable maps a GOARCH value to the spellings release artifacts
// commonly use for it.
var archAliasTable = map[string][]string{
	"amd64": {"x86_64", "x64"},
	"arm64": {"aarch64"},
	"386":   {"x86", "i386", "i686"},
}

// Key returns the platform key for the running system, e.g. "linux-amd64".
func Key() string {
	return KeyFor(runtime.GOOS, runtime.GOARCH)
}

// KeyFor returns the platform key for an explicit OS/arch pair.
func KeyFor(goos, goarch string) string {
	return strings.ToLower(goos) + "-" + strings.ToLower(goarch)
}

// OSAliases returns the canonical GOOS value followed by its known aliases.
func OSAliases(goos string) []string {
	return aliases(goos, osAliasTable)
}

// ArchAliases returns the canonical GOARCH value followed by its known aliases.
func ArchAliases(goarch string) []string {
	return aliases(goarch, archAliasTable)
}

func aliases(value string, table map[string][]string) []string {
	base := strings.ToLower(value)
	out := []string{base}
	for _, alias := range table[base] {
		if alias != base {
			out = append(out, alias)
		}
	}
	return out
}

// KeyCandidates returns the lookup keys for an OS/arch pair in preference
// order: the exact "os-arch" key, alias combinations of it, then the OS
// spellings alone for maps that do not distinguish architectures.
func KeyCandidates(goos, goarch string) []string {
	osNames := OSAliases(goos)
	archNames := ArchAliases(goarch)

	keys := make([]string, 0, len(osNames)*len(archNames)+len(osNames))
	for _, o := range osNames {
		for _, a := range archNames {
			keys = append(keys, o+"-"+a)
		}
	}
	keys = append(keys, osNames...)
	return keys
}

// IsWindows reports whether the current OS is Windows.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
