// Package viz renders the probability lab into surface-independent draw
// commands and rasterises them for terminals.
//
// The engine is split in two:
//
//   - [Renderer]: turns a history snapshot into a [Frame] of [Command]s in
//     the pixel space of the current [Bounds]. Geometry is recomputed from
//     the bounds on every call, so a resized surface never sees stale layout.
//   - [Canvas]: Braille sub-pixel surface that rasterises a [Frame] and
//     colours each cell through a [Theme].
//
// Text commands are skipped by the canvas; hosts show them elsewhere.
package viz
