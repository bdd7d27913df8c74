/*
Package kvs implements a persistent key-value store for configuration
data that must survive crashes and partial writes intact.

We implement:

1. Values, a small JSON-compatible tagged union (null, booleans, float64
numbers, strings, arrays, string-keyed objects), see the kvval package.

2. Snapshots, verified pairs of content and checksum holding all keys of
one store, with a fixed number of rotated older generations.

3. Defaults, a read-only value layer consulted whenever the store itself
has no entry for a key.

4. Restore, replacing the store's data in memory with any rotated
generation.

# Technical Details

**Layering.**
Reads consult the store's own data first and fall back to the defaults.
Writes, removals and Reset touch only the store's own data; defaults are
never modified at runtime, they are produced by deployment tooling.

**Flush.**
All writes are in-memory until Flush (or Close, which flushes by
default). A flush rotates the existing snapshots one generation older
and then writes the current data as the new live snapshot. Content is
encoded with sorted keys, so flushing unchanged data produces
byte-identical snapshots.

**Verification.**
Snapshot content is checksummed (Adler-32, stored big-endian in a
sibling file). A mismatch always fails the load; "missing" and
"corrupted" are deliberately different errors, because a missing
snapshot is a normal first boot while a corrupted one is damage that
must not be silently repaired by starting empty.

**Atomicity.**
The file backend writes through temp files and renames, checksum before
content, so a crash leaves either the old snapshot, the new one, or a
pair that fails verification; never a torn mix that passes.

**Backends.**
Storage is pluggable: loose file pairs (the default), a single bbolt
database, or memory. All backends verify; see snapshot.Backend.
*/
package kvs
