// Package paths resolves the ~/.hoist/ directory layout including the
// managed-tools file and the version-check cache. Every location honors an
// environment override (HOIST_HOME, HOIST_TOOLS) before falling back to the
// user's home directory.
package paths
