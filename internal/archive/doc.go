// Package archive unpacks release artifacts (tar.gz, bare gzip, zip) into a
// directory. It materializes regular files and directories only, rejects
// entries that would escape the target directory, and caps individual file
// sizes to guard against decompression bombs.
package archive
