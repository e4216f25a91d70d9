// Package archive reads and writes RGSSAD game archives and exposes their
// contents through the rgssfs storage contract.
//
// Three incompatible on-disk revisions exist. All begin with the signature
// "RGSSAD\0" and a version byte. Versions 1 and 2 interleave XOR-obfuscated
// per-file headers with file bodies, keyed by a single linear-congruential
// keystream that advances across the whole archive. Version 3 keeps a
// fixed-size header table keyed by an archive-wide base magic, with bodies
// stored contiguously after the table and each body keyed by its own
// per-entry magic.
//
// An open archive is indexed once, by a single linear scan of the header.
// Contained files decode lazily on read. The archive itself is never
// edited in place; rebuilding through FromFiles is the only supported way
// to change its contents.
package archive
