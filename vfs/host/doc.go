// Package host adapts an afero filesystem to the rgssfs storage contract.
//
// The editor opens projects through host.NewDir, which roots an OsFs at
// the project directory. Tests use host.New over an afero.MemMapFs to get
// a hermetic backend with identical semantics.
package host
