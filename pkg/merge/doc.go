// Package merge folds satellite manifests into a root package.
//
// The root declares glob patterns under extra.merge-plugin. Each pass
// expands the include patterns and then the require patterns in declared
// order, sorting the matches of each pattern lexicographically, and folds
// every matched manifest into a working copy of the root section by section:
//
//	require, require-dev      new links added; collisions deferred, replaced or ignored
//	conflict/replace/provide  later source wins
//	suggest                   later source wins
//	repositories              satellite entries prepended
//	autoload, autoload-dev    deep merge with relative paths rebased
//	extra                     opt-in, root wins unless replace is set
//	scripts                   opt-in, commands appended after the root's
//
// Sections that received data are written back to the root once, after the
// pass succeeded. A failed pass leaves the root and the Run untouched.
//
// A Run tracks which files were merged with and without their dev sections,
// so repeated passes inside one host command are idempotent and a later dev
// pass only adds the dev sections of files already merged.
//
// Example:
//
//	orch := merge.NewOrchestrator(dir, merge.WithLogger(logger))
//	run := merge.NewRun()
//	if _, err := orch.Merge(ctx, root, run); err != nil {
//	    return err
//	}
package merge
