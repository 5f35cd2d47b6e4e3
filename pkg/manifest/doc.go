// Package manifest models package manifests and the root package a merge
// writes into.
//
// A Manifest carries typed requirement links (require, require-dev,
// conflict, replace, provide), the loosely-typed sections held as value
// documents (suggest, repositories, autoload, autoload-dev, scripts, extra),
// and the data derived from requirements: inline branch aliases, pinned
// source references and per-package stability flags.
//
// RootPackage is the host-facing mutation surface. MemoryRoot implements it
// over a Manifest and can report sections as unsupported to model hosts with
// a narrower API.
package manifest
