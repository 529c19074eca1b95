// Package upgrade implements the release-upgrade engine: given a tool's
// repository, installation directory, and platform-to-asset map, it resolves
// the requested version against GitHub Releases, downloads and extracts the
// matching artifact into a staging directory, and atomically swaps the files
// into place, preserving each replaced file under a stash suffix until the
// next run cleans it up.
//
// An Engine is single-shot and moves through the phases idle,
// resolving-version, fetching, extracting, installing, and complete (or
// failed). Every failure surfaces as an *Error with a numeric code: small
// codes for configuration and cleanup problems, thousand-bands for pipeline
// stages, with HTTP statuses embedded in the fetch bands (1404 is a direct
// download that returned 404). External collaborators plug in behind the
// ReleaseSource and Extractor interfaces.
package upgrade
