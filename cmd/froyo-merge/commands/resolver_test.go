package commands

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/openfroyo/froyo-merge/pkg/plugin"
	"github.com/openfroyo/froyo-merge/pkg/telemetry"
)

func newTestTracer(t *testing.T) *telemetry.Tracer {
	t.Helper()
	tracer, err := telemetry.NewTracer(telemetry.TracingConfig{}, "test", "dev", "test")
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	return tracer
}

func TestCommandResolver_Args(t *testing.T) {
	r, err := newCommandResolver(`composer update --no-interaction --working-dir "my project"`, ".", 0, newTestTracer(t))
	if err != nil {
		t.Fatalf("Failed to create resolver: %v", err)
	}

	tests := []struct {
		name string
		req  plugin.ResolveRequest
		want []string
	}{
		{
			name: "no dev without dump",
			req:  plugin.ResolveRequest{AllowList: []string{"lib/one"}},
			want: []string{"update", "--no-interaction", "--working-dir", "my project", "lib/one", "--no-dev", "--no-autoloader"},
		},
		{
			name: "dev with optimized dump",
			req: plugin.ResolveRequest{
				AllowList:          []string{"lib/one", "lib/two"},
				DevMode:            true,
				DumpAutoloader:     true,
				OptimizeAutoloader: true,
			},
			want: []string{"update", "--no-interaction", "--working-dir", "my project", "lib/one", "lib/two", "--optimize-autoloader"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.args(tt.req); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected args %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewCommandResolver_Invalid(t *testing.T) {
	for _, command := range []string{"", `composer "unterminated`} {
		if _, err := newCommandResolver(command, ".", 0, newTestTracer(t)); err == nil {
			t.Errorf("Expected error for command %q", command)
		}
	}
}

func TestCommandResolver_ExitStatus(t *testing.T) {
	requireShell(t)
	r, err := newCommandResolver("sh -c 'exit 4'", t.TempDir(), 0, newTestTracer(t))
	if err != nil {
		t.Fatalf("Failed to create resolver: %v", err)
	}
	r.stdout, r.stderr = nil, nil

	status, err := r.Resolve(context.Background(), plugin.ResolveRequest{AllowList: []string{"lib/one"}})
	if err != nil {
		t.Fatalf("Expected exit status, got error: %v", err)
	}
	if status != 4 {
		t.Errorf("Expected status 4, got %d", status)
	}
}

func TestCommandResolver_MissingBinary(t *testing.T) {
	r, err := newCommandResolver("froyo-merge-no-such-binary update", t.TempDir(), 0, newTestTracer(t))
	if err != nil {
		t.Fatalf("Failed to create resolver: %v", err)
	}

	status, err := r.Resolve(context.Background(), plugin.ResolveRequest{})
	if err == nil {
		t.Fatal("Expected error for a missing binary")
	}
	if status != -1 {
		t.Errorf("Expected status -1, got %d", status)
	}
}

func TestFileLockStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composer.lock")
	store := &fileLockStore{path: path}

	if _, ok, err := store.Backup(); err != nil || ok {
		t.Fatalf("Expected no backup for a missing lock, got ok=%v err=%v", ok, err)
	}

	if err := store.Restore([]byte("locked")); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	data, ok, err := store.Backup()
	if err != nil || !ok {
		t.Fatalf("Expected backup, got ok=%v err=%v", ok, err)
	}
	if string(data) != "locked" {
		t.Errorf("Expected %q, got %q", "locked", data)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected lock file on disk: %v", err)
	}
}
