// Package project assembles the filesystem stack for an RPG Maker game
// directory: the directory itself, any RTP directories layered beneath
// it, and an encrypted archive (if one sits in the project root) layered
// last, all behind a case-folding path cache.
package project
