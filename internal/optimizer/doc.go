// Package optimizer runs batches of image optimization jobs.
//
// Each source becomes a job with its own directory under the workspace's
// jobs directory. The job stages a private copy of the source, races the
// tools for its format (plus the PNG tools on a converted copy when a GIF
// may be retargeted), runs the WebP encoder when asked, and promotes the
// winners into the final directory before its directory is removed. The
// source itself is only ever read.
//
// Jobs run on a bounded worker pool; external processes are bounded
// separately by the tool runner, so a batch of many small files cannot
// start more processes than configured.
package optimizer
