// Package naming builds the file names results take in the final
// directory and resolves clashes when different sources would claim the
// same name.
//
// A primary result keeps the source's basename unless its type changed,
// in which case only the extension is replaced. A WebP sibling is the
// source's stem plus ".webp". Names are claimed per source through a
// [CollisionResolver]; a second source asking for an owned name gets a
// " - dupN" variant.
package naming
