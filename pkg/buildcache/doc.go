/*
Package buildcache records, in a SQLite database, a hash of every page the
site builder has written. A later build asks the cache whether the output it
is about to write is identical to what is already on disk and skips the write
when it is, so unchanged pages keep their modification time.

The package only uses database/sql; the caller picks and registers the
driver.
*/
package buildcache
