// Package notify keeps a small JSON cache of the newest hoist release and
// prints a non-blocking upgrade banner at startup. The cache is refreshed in
// the background at most once per day; managed tools never use this path.
package notify
