// Package tools runs the external image optimizers (advpng, pngout,
// optipng, gifsicle, jpegtran, jfifremove, cwebp, gif2webp) found in a
// configured tools directory.
//
// Every invocation works on a job-private file and writes into a
// per-tool subdirectory next to it, so concurrent tools racing on the
// same source never share an output path. Three I/O styles are
// supported:
//
//   - in place: the runner copies the input to the output path and the
//     tool rewrites that copy (advpng, optipng)
//   - input to output: the tool reads one path and writes another
//     (pngout, gifsicle, jpegtran, cwebp, gif2webp)
//   - filter: stdin to stdout (jfifremove)
//
// Failures are typed: [ToolNotFoundError], [ToolExecutionError] and
// [ToolTimeoutError]. The per-tool methods on [Runner] propagate them
// unchanged; batch callers fold them into candidate results instead.
package tools
