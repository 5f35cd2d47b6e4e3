package merge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/openfroyo/froyo-merge/pkg/manifest"
	"github.com/openfroyo/froyo-merge/pkg/value"
	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func newRoot(t *testing.T, doc string, unsupported ...manifest.Section) *manifest.MemoryRoot {
	t.Helper()
	m, err := manifest.Decode(value.MustParseMap(doc), "composer.json")
	if err != nil {
		t.Fatalf("Failed to decode root manifest: %v", err)
	}
	return manifest.NewMemoryRoot(m, unsupported...)
}

func newTestOrchestrator(dir string) *Orchestrator {
	return NewOrchestrator(dir, WithLogger(zerolog.New(nil).Level(zerolog.Disabled)))
}

// countingRoot counts setter calls on the sections the tests care about.
type countingRoot struct {
	*manifest.MemoryRoot
	calls map[manifest.Section]int
}

func (r *countingRoot) SetRequires(l *manifest.Links) {
	r.calls[manifest.SectionRequires]++
	r.MemoryRoot.SetRequires(l)
}

func (r *countingRoot) SetAutoload(v *value.Map) {
	r.calls[manifest.SectionAutoload]++
	r.MemoryRoot.SetAutoload(v)
}

func (r *countingRoot) SetExtra(v *value.Map) {
	r.calls[manifest.SectionExtra]++
	r.MemoryRoot.SetExtra(v)
}

func TestMerge_AttributesLinksToOrigin(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"name":"x/a","require":{"lib/one":"^1"}}`)
	b := writeFile(t, dir, "b.json", `{"name":"x/b","require":{"lib/two":"^2"}}`)
	root := newRoot(t, `{"name":"root/app","require":{"lib/base":"^3"},
		"extra":{"merge-plugin":{"include":["a.json","b.json"]}}}`)

	result, err := newTestOrchestrator(dir).Merge(context.Background(), root, NewRun())
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	requires := root.Requires()
	if names := requires.Names(); len(names) != 3 || names[0] != "lib/base" {
		t.Fatalf("Expected root link first followed by merged links, got %v", names)
	}
	one, _ := requires.Get("lib/one")
	if one.Origin != a || one.Source != "x/a" {
		t.Errorf("Expected lib/one from x/a at %s, got %+v", a, one)
	}
	two, _ := requires.Get("lib/two")
	if two.Origin != b || two.Constraint != "^2" {
		t.Errorf("Expected lib/two ^2 from %s, got %+v", b, two)
	}
	if len(result.Files) != 2 || result.Files[0] != a || result.Files[1] != b {
		t.Errorf("Expected files [%s %s], got %v", a, b, result.Files)
	}
}

func TestMerge_DeclaredThenLexicographicOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "z.json", `{"name":"x/z","require":{"dup/pkg":"^1"}}`)
	second := writeFile(t, dir, "lib/b.json", `{"name":"x/b","require":{"dup/pkg":"^3"}}`)
	third := writeFile(t, dir, "lib/a.json", `{"name":"x/a","require":{"dup/pkg":"^2"}}`)
	root := newRoot(t, `{"name":"root/app",
		"extra":{"merge-plugin":{"include":["z.json","lib/*.json"],"replace":true}}}`)

	result, err := newTestOrchestrator(dir).Merge(context.Background(), root, NewRun())
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	expected := []string{first, third, second}
	if len(result.Files) != len(expected) {
		t.Fatalf("Expected %d files, got %v", len(expected), result.Files)
	}
	for i := range expected {
		if result.Files[i] != expected[i] {
			t.Errorf("Expected file %d to be %s, got %s", i, expected[i], result.Files[i])
		}
	}

	link, _ := root.Requires().Get("dup/pkg")
	if link.Constraint != "^3" {
		t.Errorf("Expected last matched file to win, got %s", link.Constraint)
	}
}

func TestMerge_DuplicatesDeferredToSolver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"name":"x/a","require":{"lib/one":"^2"}}`)
	root := newRoot(t, `{"name":"root/app","require":{"lib/one":"^1"},
		"extra":{"merge-plugin":{"include":["a.json"]}}}`)
	run := NewRun()

	if _, err := newTestOrchestrator(dir).Merge(context.Background(), root, run); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	link, _ := root.Requires().Get("lib/one")
	if link.Constraint != "^1" {
		t.Errorf("Expected root constraint to be kept, got %s", link.Constraint)
	}
	dups := run.DuplicateLinks(manifest.SectionRequires)
	if len(dups) != 1 || dups[0].Constraint != "^2" {
		t.Errorf("Expected the satellite link to be deferred, got %+v", dups)
	}
}

func TestMerge_IgnoreDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"name":"x/a","require":{"lib/one":"^2"}}`)
	root := newRoot(t, `{"name":"root/app","require":{"lib/one":"^1"},
		"extra":{"merge-plugin":{"include":["a.json"],"ignore-duplicates":true,"replace":true}}}`)
	run := NewRun()

	if _, err := newTestOrchestrator(dir).Merge(context.Background(), root, run); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	link, _ := root.Requires().Get("lib/one")
	if link.Constraint != "^1" {
		t.Errorf("Expected ignore-duplicates to win over replace, got %s", link.Constraint)
	}
	if dups := run.DuplicateLinks(manifest.SectionRequires); len(dups) != 0 {
		t.Errorf("Expected no deferred links, got %+v", dups)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"name":"x/a","require":{"lib/one":"^1"},"scripts":{"test":"phpunit"}}`)
	root := newRoot(t, `{"name":"root/app","scripts":{"test":"lint"},
		"extra":{"merge-plugin":{"include":["*.json"],"merge-scripts":true}}}`)
	orch := newTestOrchestrator(dir)
	run := NewRun()

	if _, err := orch.Merge(context.Background(), root, run); err != nil {
		t.Fatalf("First merge failed: %v", err)
	}
	before := manifest.Encode(root.Manifest()).String()

	result, err := orch.Merge(context.Background(), root, run)
	if err != nil {
		t.Fatalf("Second merge failed: %v", err)
	}
	if len(result.Files) != 0 || len(result.Committed) != 0 {
		t.Errorf("Expected second pass to do nothing, got %+v", result)
	}
	if after := manifest.Encode(root.Manifest()).String(); after != before {
		t.Errorf("Expected root unchanged\nbefore: %s\nafter:  %s", before, after)
	}
	commands, _ := root.Scripts().Get("test")
	if got := value.Strings(commands); len(got) != 2 {
		t.Errorf("Expected scripts merged once, got %v", got)
	}
}

func TestMerge_MissingRequiredFileLeavesRootUntouched(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"name":"x/a","require":{"lib/one":"^1"}}`)
	root := newRoot(t, `{"name":"root/app",
		"extra":{"merge-plugin":{"include":["a.json"],"require":["required/*.json"]}}}`)
	run := NewRun()

	_, err := newTestOrchestrator(dir).Merge(context.Background(), root, run)
	if err == nil {
		t.Fatal("Expected missing file error, got nil")
	}
	if !IsMissingFile(err) {
		t.Fatalf("Expected missing file error, got %v", err)
	}

	var merr *Error
	if e, ok := err.(*Error); ok {
		merr = e
	}
	if merr == nil || merr.Pattern != "required/*.json" {
		t.Errorf("Expected pattern in error, got %v", err)
	}
	if root.Requires().Has("lib/one") {
		t.Error("Expected no root mutation after a failed pass")
	}
	if run.IsPartiallyMerged(a) || run.IsMerged(a) {
		t.Error("Expected run state unchanged after a failed pass")
	}
}

func TestMerge_MalformedSatellite(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `{"name":`)
	root := newRoot(t, `{"name":"root/app","extra":{"merge-plugin":{"include":["bad.json"]}}}`)

	_, err := newTestOrchestrator(dir).Merge(context.Background(), root, NewRun())
	if !IsManifestParse(err) {
		t.Fatalf("Expected manifest parse error, got %v", err)
	}
	if e, ok := err.(*Error); !ok || e.Path != bad {
		t.Errorf("Expected error for %s, got %v", bad, err)
	}
}

func TestMerge_DevSectionsOnLaterPass(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"name":"x/a",
		"require":{"lib/one":"^1"},
		"require-dev":{"lib/test":"^4"},
		"autoload-dev":{"psr-4":{"Tests\\":"tests/"}}}`)
	root := newRoot(t, `{"name":"root/app","extra":{"merge-plugin":{"include":["a.json"]}}}`)
	orch := newTestOrchestrator(dir)
	run := NewRun()

	if _, err := orch.Merge(context.Background(), root, run); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if root.DevRequires().Len() != 0 {
		t.Fatal("Expected no dev requirements outside dev mode")
	}
	if !run.IsPartiallyMerged(a) {
		t.Fatal("Expected file to be partially merged")
	}

	run.DevMode = true
	result, err := orch.Merge(context.Background(), root, run)
	if err != nil {
		t.Fatalf("Dev merge failed: %v", err)
	}
	if !root.DevRequires().Has("lib/test") {
		t.Error("Expected dev requirement after dev pass")
	}
	if _, ok := root.DevAutoload().GetMap("psr-4"); !ok {
		t.Error("Expected dev autoload after dev pass")
	}
	for _, s := range result.Committed {
		if s == manifest.SectionRequires {
			t.Error("Expected require section not to be rewritten by the dev pass")
		}
	}
	if !run.IsMerged(a) || run.IsPartiallyMerged(a) {
		t.Error("Expected file to be fully merged")
	}
	if len(result.Entries) != 1 || result.Entries[0].Outcome != OutcomeDevMerged || result.Entries[0].Package != "x/a" {
		t.Errorf("Expected one dev_merged entry for x/a, got %+v", result.Entries)
	}

	result, err = orch.Merge(context.Background(), root, run)
	if err != nil {
		t.Fatalf("Third merge failed: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Outcome != OutcomeAlreadyDone || result.Entries[0].Path != a {
		t.Errorf("Expected one already_merged entry for %s, got %+v", a, result.Entries)
	}
}

func TestMerge_MergeDevDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"name":"x/a","require-dev":{"lib/test":"^4"}}`)
	root := newRoot(t, `{"name":"root/app","extra":{"merge-plugin":{"include":["a.json"],"merge-dev":false}}}`)
	run := NewRun()
	run.DevMode = true

	if _, err := newTestOrchestrator(dir).Merge(context.Background(), root, run); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if root.DevRequires().Len() != 0 {
		t.Error("Expected dev requirements to be skipped")
	}
}

func TestMerge_Recursion(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"name":"x/a",
		"extra":{"merge-plugin":{"include":["nested/*.json"]}}}`)
	c := writeFile(t, dir, "nested/c.json", `{"name":"x/c","require":{"lib/three":"^3"}}`)

	t.Run("enabled", func(t *testing.T) {
		root := newRoot(t, `{"name":"root/app","extra":{"merge-plugin":{"include":["a.json"]}}}`)
		result, err := newTestOrchestrator(dir).Merge(context.Background(), root, NewRun())
		if err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		if len(result.Files) != 2 || result.Files[0] != a || result.Files[1] != c {
			t.Errorf("Expected [%s %s], got %v", a, c, result.Files)
		}
		if !root.Requires().Has("lib/three") {
			t.Error("Expected nested requirement to be merged")
		}
	})

	t.Run("disabled", func(t *testing.T) {
		root := newRoot(t, `{"name":"root/app","extra":{"merge-plugin":{"include":["a.json"],"recurse":false}}}`)
		result, err := newTestOrchestrator(dir).Merge(context.Background(), root, NewRun())
		if err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		if len(result.Files) != 1 {
			t.Errorf("Expected only the top-level file, got %v", result.Files)
		}
	})
}

func TestMerge_RecursionCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"name":"x/a","extra":{"merge-plugin":{"include":["b.json"]}}}`)
	writeFile(t, dir, "b.json", `{"name":"x/b","extra":{"merge-plugin":{"include":["a.json"]}}}`)
	root := newRoot(t, `{"name":"root/app","extra":{"merge-plugin":{"include":["a.json"]}}}`)

	result, err := newTestOrchestrator(dir).Merge(context.Background(), root, NewRun())
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(result.Files) != 2 {
		t.Errorf("Expected each file merged once, got %v", result.Files)
	}
}

func TestMerge_SkipsSatelliteRequiredByRoot(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"name":"x/a","require":{"lib/one":"^1"}}`)
	root := newRoot(t, `{"name":"root/app","require":{"x/a":"*"},
		"extra":{"merge-plugin":{"include":["a.json"]}}}`)

	result, err := newTestOrchestrator(dir).Merge(context.Background(), root, NewRun())
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != a {
		t.Errorf("Expected %s to be skipped, got %v", a, result.Skipped)
	}
	if root.Requires().Has("lib/one") {
		t.Error("Expected skipped satellite not to contribute requirements")
	}
}

func TestMerge_UnsupportedSectionIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"name":"x/a","require":{"lib/one":"^1"},"suggest":{"lib/opt":"faster"}}`)
	root := newRoot(t, `{"name":"root/app","extra":{"merge-plugin":{"include":["a.json"]}}}`,
		manifest.SectionRequires)

	result, err := newTestOrchestrator(dir).Merge(context.Background(), root, NewRun())
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if root.Requires().Has("lib/one") {
		t.Error("Expected unsupported section to be left alone")
	}
	if !root.Suggests().Has("lib/opt") {
		t.Error("Expected supported sections to be merged")
	}
	for _, s := range result.Committed {
		if s == manifest.SectionRequires {
			t.Error("Expected require not to be reported as committed")
		}
	}
}

func TestMerge_SettersCalledOncePerPass(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"name":"x/a","require":{"lib/one":"^1"},"autoload":{"files":["a.php"]}}`)
	writeFile(t, dir, "b.json", `{"name":"x/b","require":{"lib/two":"^1"},"autoload":{"files":["b.php"]}}`)
	root := &countingRoot{
		MemoryRoot: newRoot(t, `{"name":"root/app","extra":{"merge-plugin":{"include":["*.json"]}}}`),
		calls:      make(map[manifest.Section]int),
	}

	if _, err := newTestOrchestrator(dir).Merge(context.Background(), root, NewRun()); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if got := root.calls[manifest.SectionRequires]; got != 1 {
		t.Errorf("Expected SetRequires once, got %d", got)
	}
	if got := root.calls[manifest.SectionAutoload]; got != 1 {
		t.Errorf("Expected SetAutoload once, got %d", got)
	}
	if got := root.calls[manifest.SectionExtra]; got != 0 {
		t.Errorf("Expected SetExtra never called, got %d", got)
	}
	files, _ := root.Autoload().Get("files")
	if got := value.Strings(files); len(got) != 2 || got[0] != "a.php" || got[1] != "b.php" {
		t.Errorf("Expected autoload files in merge order, got %v", got)
	}
}

func TestMerge_SectionRules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sub/a.json", `{
		"require":{"x/other":"self.version","lib/edge":"dev-main","lib/pin":"dev-main#abc123"},
		"autoload":{"psr-4":{"A\\":"src/","B\\":""},"files":["helpers.php"]},
		"repositories":[{"type":"vcs","url":"satellite"}],
		"scripts":{"test":"phpunit"},
		"extra":{"shared":"satellite","only":"satellite","merge-plugin":{"include":["nothing/*.json"]}}
	}`)
	root := newRoot(t, `{"name":"root/app","version":"2.0.0",
		"autoload":{"psr-4":{"Root\\":"lib/"}},
		"repositories":[{"type":"vcs","url":"root"}],
		"scripts":{"test":"lint"},
		"extra":{"shared":"root","merge-plugin":{"include":["sub/*.json"],"merge-extra":true,"merge-scripts":true}}}`)

	run := NewRun()
	if _, err := newTestOrchestrator(dir).Merge(context.Background(), root, run); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	other, _ := root.Requires().Get("x/other")
	if other.Constraint != "2.0.0" {
		t.Errorf("Expected self.version pinned to 2.0.0, got %s", other.Constraint)
	}
	if other.Source != "merge-plugin/sub-a.json" {
		t.Errorf("Expected synthetic source name, got %s", other.Source)
	}

	if got := root.StabilityFlags()["lib/edge"]; got != manifest.StabilityDev {
		t.Errorf("Expected dev stability for lib/edge, got %s", got)
	}
	if got := root.References()["lib/pin"]; got != "abc123" {
		t.Errorf("Expected pinned reference abc123, got %q", got)
	}

	psr4, _ := root.Autoload().GetMap("psr-4")
	if got, _ := psr4.GetString(`A\`); got != "sub/src/" {
		t.Errorf("Expected rebased autoload path, got %q", got)
	}
	if got, _ := psr4.GetString(`B\`); got != "sub/" {
		t.Errorf("Expected empty autoload path rebased to sub/, got %q", got)
	}
	if got, _ := psr4.GetString(`Root\`); got != "lib/" {
		t.Errorf("Expected root autoload kept, got %q", got)
	}
	files, _ := root.Autoload().Get("files")
	if got := value.Strings(files); len(got) != 1 || got[0] != "sub/helpers.php" {
		t.Errorf("Expected rebased files entry, got %v", got)
	}

	repos := root.Repositories()
	if len(repos) != 2 {
		t.Fatalf("Expected 2 repositories, got %d", len(repos))
	}
	if url, _ := repos[0].(*value.Map).GetString("url"); url != "satellite" {
		t.Errorf("Expected satellite repository first, got %s", url)
	}

	commands, _ := root.Scripts().Get("test")
	if got := value.Strings(commands); len(got) != 2 || got[0] != "lint" || got[1] != "phpunit" {
		t.Errorf("Expected root command before satellite command, got %v", got)
	}

	extra := root.Extra()
	if got, _ := extra.GetString("shared"); got != "root" {
		t.Errorf("Expected root extra to win, got %s", got)
	}
	if got, _ := extra.GetString("only"); got != "satellite" {
		t.Errorf("Expected new extra key merged, got %s", got)
	}
	block, _ := extra.GetMap(ExtraKey)
	include, _ := block.Get("include")
	if got := value.Strings(include); len(got) != 1 || got[0] != "sub/*.json" {
		t.Errorf("Expected root merge settings untouched, got %v", got)
	}

	if allow := run.AllowList(); len(allow) != 3 || allow[0] != "x/other" {
		t.Errorf("Expected allow list of merged requirements, got %v", allow)
	}
}

func TestMerge_ExtraReplaceDeep(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"name":"x/a","extra":{"conf":{"level":"satellite","list":[2]}}}`)
	root := newRoot(t, `{"name":"root/app","extra":{"conf":{"level":"root","keep":true,"list":[1]},
		"merge-plugin":{"include":["a.json"],"merge-extra":true,"merge-extra-deep":true,"replace":true}}}`)

	if _, err := newTestOrchestrator(dir).Merge(context.Background(), root, NewRun()); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	conf, _ := root.Extra().GetMap("conf")
	want := value.MustParseMap(`{"level":"satellite","keep":true,"list":[1,2]}`)
	if !value.Equal(conf, want) {
		t.Errorf("Expected %s, got %s", want, conf)
	}
}

func TestMerge_CollisionModes(t *testing.T) {
	tests := []struct {
		name       string
		satellites map[string]string
		root       string
		check      func(t *testing.T, root *manifest.MemoryRoot)
	}{
		{
			name: "deep extra keeps root scalars",
			satellites: map[string]string{
				"a.json": `{"name":"x/a","extra":{"conf":{"level":"satellite","added":"satellite"}}}`,
			},
			root: `{"name":"root/app","extra":{"conf":{"level":"root"},
				"merge-plugin":{"include":["a.json"],"merge-extra":true,"merge-extra-deep":true}}}`,
			check: func(t *testing.T, root *manifest.MemoryRoot) {
				conf, _ := root.Extra().GetMap("conf")
				if got, _ := conf.GetString("level"); got != "root" {
					t.Errorf("Expected root scalar to win, got %q", got)
				}
				if got, _ := conf.GetString("added"); got != "satellite" {
					t.Errorf("Expected new nested key merged, got %q", got)
				}
			},
		},
		{
			name: "replace overrides scripts",
			satellites: map[string]string{
				"a.json": `{"name":"x/a","scripts":{"test":"phpunit"}}`,
			},
			root: `{"name":"root/app","scripts":{"test":"lint","build":"make"},
				"extra":{"merge-plugin":{"include":["a.json"],"merge-scripts":true,"replace":true}}}`,
			check: func(t *testing.T, root *manifest.MemoryRoot) {
				test, _ := root.Scripts().Get("test")
				if got := value.Strings(test); len(got) != 1 || got[0] != "phpunit" {
					t.Errorf("Expected satellite script to replace root script, got %v", got)
				}
				build, _ := root.Scripts().Get("build")
				if got := value.Strings(build); len(got) != 1 || got[0] != "make" {
					t.Errorf("Expected unrelated root script kept, got %v", got)
				}
			},
		},
		{
			name: "replace overrides shallow extra",
			satellites: map[string]string{
				"a.json": `{"name":"x/a","extra":{"conf":{"level":"satellite"}}}`,
			},
			root: `{"name":"root/app","extra":{"conf":{"level":"root","keep":true},
				"merge-plugin":{"include":["a.json"],"merge-extra":true,"replace":true}}}`,
			check: func(t *testing.T, root *manifest.MemoryRoot) {
				conf, _ := root.Extra().GetMap("conf")
				if got, _ := conf.GetString("level"); got != "satellite" {
					t.Errorf("Expected satellite extra to win, got %q", got)
				}
				if conf.Has("keep") {
					t.Errorf("Expected colliding extra key replaced whole, got %s", conf)
				}
			},
		},
		{
			name: "repositories prepended per satellite",
			satellites: map[string]string{
				"a.json": `{"name":"x/a","repositories":[{"url":"a1"},{"url":"a2"}]}`,
				"b.json": `{"name":"x/b","repositories":[{"url":"b1"}]}`,
			},
			root: `{"name":"root/app","repositories":[{"url":"root"}],
				"extra":{"merge-plugin":{"include":["a.json","b.json"]}}}`,
			check: func(t *testing.T, root *manifest.MemoryRoot) {
				want := []string{"b1", "a1", "a2", "root"}
				repos := root.Repositories()
				if len(repos) != len(want) {
					t.Fatalf("Expected %d repositories, got %d", len(want), len(repos))
				}
				for i, w := range want {
					if got, _ := repos[i].(*value.Map).GetString("url"); got != w {
						t.Errorf("Expected repository %d to be %s, got %s", i, w, got)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for rel, doc := range tt.satellites {
				writeFile(t, dir, rel, doc)
			}
			root := newRoot(t, tt.root)
			if _, err := newTestOrchestrator(dir).Merge(context.Background(), root, NewRun()); err != nil {
				t.Fatalf("Merge failed: %v", err)
			}
			tt.check(t, root)
		})
	}
}
