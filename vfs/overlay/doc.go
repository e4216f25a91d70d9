// Package overlay stacks storage backends into one logical namespace.
//
// Layers are pushed once, front to back, and the order is fixed from then
// on: the project directory first, runtime-package directories next, a
// bundled archive last. Reads are satisfied by the first layer that has
// the path; directory listings merge all layers with earlier layers
// shadowing later same-named entries; every mutation goes to the first
// layer only, so overlays and archives stay read-only from the editor's
// point of view.
package overlay
