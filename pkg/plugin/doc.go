// Package plugin connects the merge engine to a package manager's command
// lifecycle.
//
// The host calls OnInit once at start, OnPreCommand before install, update
// and autoload dump, OnPostPackageInstalled for each installed package, and
// OnPostCommand after install or update. Every hook shares one merge.Run, so
// a satellite is merged at most once per mode within the command.
//
// When the plugin package itself was installed during the command,
// OnPostCommand runs one extra resolution restricted to the packages the
// merge introduced, and rolls the lock artifact back if it fails.
package plugin
