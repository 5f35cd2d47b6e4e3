// Package watch re-runs a merge when satellite or root manifests change on
// disk. Changes are debounced so an editor save that touches several files
// triggers a single merge.
package watch
