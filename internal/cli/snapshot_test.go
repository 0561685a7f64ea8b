package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	errs "github.com/matzehuels/layoutview/pkg/errors"
	"github.com/matzehuels/layoutview/pkg/odb/memdb/memdbtest"
	"github.com/matzehuels/layoutview/pkg/snapshot"
)

// designFixture writes the test design to dir and returns its flags.
func designFixture(t *testing.T, dir string) []string {
	t.Helper()
	files := memdbtest.WriteFiles(t, dir)
	return []string{
		"--tech", files.LEF[0].FilePath,
		"--lib", files.LEF[1].FilePath,
		"--design", files.DEF.FilePath,
	}
}

// execCLI runs the command line with a private config and cache.
func execCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv(configEnv, filepath.Join(t.TempDir(), "absent.toml"))
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	if err := execCLI(t, args...); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
}

func TestSnapshotCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "top.json")
	runCLI(t, append([]string{"snapshot", "-q", "-o", out}, designFixture(t, dir)...)...)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	c, err := snapshot.DecodeCompact(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeCompact() error = %v", err)
	}
	if c.Name != "synth_top" || len(c.Instances) != 3 {
		t.Errorf("snapshot = %s with %d instances, want synth_top with 3", c.Name, len(c.Instances))
	}
}

func TestSnapshotCommandGzipDefaultPath(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, append([]string{"snapshot", "--gzip", "--cache", "none"}, designFixture(t, dir)...)...)

	data, err := os.ReadFile(filepath.Join(dir, "top.json.gz"))
	if err != nil {
		t.Fatalf("default output not written: %v", err)
	}
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		t.Error("output is not gzip")
	}
}

func TestSnapshotCommandErrors(t *testing.T) {
	dir := t.TempDir()
	files := memdbtest.WriteFiles(t, dir)

	tests := []struct {
		name string
		args []string
	}{
		{"missing design flag", []string{"snapshot", "--tech", files.LEF[0].FilePath}},
		{"no library", []string{"snapshot", "--tech", files.LEF[0].FilePath, "--design", files.DEF.FilePath}},
		{"tech and techlib", []string{"snapshot", "--tech", "a.lef", "--techlib", "b.lef", "--design", "c.def"}},
		{"missing file", []string{"snapshot", "--tech", filepath.Join(dir, "nope.lef"), "--lib", files.LEF[1].FilePath, "--design", files.DEF.FilePath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execCLI(t, tt.args...); err == nil {
				t.Errorf("%v succeeded, want error", tt.args)
			}
		})
	}
}

func TestSnapshotNativeText(t *testing.T) {
	dir := t.TempDir()
	args := append([]string{"--native-text", "snapshot", "-q", "-o", filepath.Join(dir, "top.json")}, designFixture(t, dir)...)

	// The interchange documents carry no DEF design header.
	err := execCLI(t, args...)
	if !errs.Is(err, errs.ErrCodeDEFParse) {
		t.Fatalf("snapshot --native-text error = %v, want DEF_PARSE", err)
	}
	if got := errs.UserMessage(err); got != "DEF error, missing or wrong design header" {
		t.Errorf("message = %q", got)
	}
}

func TestSnapshotPath(t *testing.T) {
	tests := []struct {
		output, design string
		gzip           bool
		want           string
	}{
		{"", "dir/top.def", false, "dir/top.json"},
		{"", "dir/top.def", true, "dir/top.json.gz"},
		{"out.json", "top.def", true, "out.json"},
		{"-", "top.def", false, "-"},
	}
	for _, tt := range tests {
		if got := snapshotPath(tt.output, tt.design, tt.gzip); got != tt.want {
			t.Errorf("snapshotPath(%q, %q, %v) = %q, want %q", tt.output, tt.design, tt.gzip, got, tt.want)
		}
	}
}

func TestDesignFlagsFiles(t *testing.T) {
	f := designFlags{techLib: "pdk.lef", libs: []string{"a.lef", "b.lef"}, design: "top.def"}
	files, err := f.files()
	if err != nil {
		t.Fatal(err)
	}
	if len(files.LEF) != 3 || files.DEF == nil || files.DEF.FilePath != "top.def" {
		t.Fatalf("files = %+v", files)
	}
	if lef := files.LEF[0]; !lef.IsTech || !lef.IsLibrary {
		t.Errorf("techlib file classified as tech=%v lib=%v", lef.IsTech, lef.IsLibrary)
	}
	for i, lef := range files.LEF[1:] {
		if lef.IsTech || !lef.IsLibrary {
			t.Errorf("lib %d classified as tech=%v lib=%v", i, lef.IsTech, lef.IsLibrary)
		}
	}
	if err := files.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestCachePathCommand(t *testing.T) {
	if err := execCLI(t, "cache", "path"); err != nil {
		t.Fatal(err)
	}
	if err := execCLI(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
}
