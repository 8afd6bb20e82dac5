package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tildaslashalef/nestlint/internal/loggy"
)

type fakePatch struct {
	fullPath string
	newPath  string
	lines    []AddedLine
}

func (p *fakePatch) FullPath() string        { return p.fullPath }
func (p *fakePatch) NewPath() string         { return p.newPath }
func (p *fakePatch) OldPath() string         { return p.newPath }
func (p *fakePatch) Additions() int          { return len(p.lines) }
func (p *fakePatch) AddedLines() []AddedLine { return p.lines }

type fakeLine struct {
	lineNo int
	patch  *fakePatch
}

func (l *fakeLine) NewLineNo() int  { return l.lineNo }
func (l *fakeLine) Content() string { return "" }
func (l *fakeLine) Patch() Patch    { return l.patch }

func newFakePatch(fullPath, newPath string, lineNos ...int) *fakePatch {
	p := &fakePatch{fullPath: fullPath, newPath: newPath}
	for _, n := range lineNos {
		p.lines = append(p.lines, &fakeLine{lineNo: n, patch: p})
	}
	return p
}

type fakeLinter struct {
	output string
	err    error
	calls  int
	dir    string
	files  []string
}

func (f *fakeLinter) Run(ctx context.Context, workDir string, files []string) (string, error) {
	f.calls++
	f.dir = workDir
	f.files = files
	return f.output, f.err
}

type fakeLocator struct {
	root string
	err  error
}

func (f fakeLocator) WorkTreeRoot(dir string) (string, error) {
	return f.root, f.err
}

func TestFilterSourceFiles(t *testing.T) {
	t.Run("keeps recognized extensions in order", func(t *testing.T) {
		files := []string{
			"test.py",
			"test.c", "test.c++", "test.cc", "test.cu", "test.cuh", "test.icc",
			"test.g",
			"test.h++", "test.hpp", "test.hxx", "test.hh", "test.cxx", "test.cpp",
			"test.rb",
		}

		got := FilterSourceFiles(files)

		// '+' is not special to the shell, so these come back unquoted
		assert.Equal(t, []string{
			"test.c", "test.c++", "test.cc", "test.cu", "test.cuh",
			"test.icc", "test.h++", "test.hpp", "test.hxx", "test.hh",
			"test.cxx", "test.cpp",
		}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, FilterSourceFiles(nil))
		assert.Empty(t, FilterSourceFiles([]string{}))
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Empty(t, FilterSourceFiles([]string{"main.go", "README.md", "Makefile"}))
	})

	t.Run("extension match is case-sensitive and needs the dot", func(t *testing.T) {
		got := FilterSourceFiles([]string{"a.CPP", "a.Cc", "testcpp", "dir.c/file", "a.cpp"})
		assert.Equal(t, []string{"a.cpp"}, got)
	})

	t.Run("keeps duplicates", func(t *testing.T) {
		got := FilterSourceFiles([]string{"a.cc", "a.cc"})
		assert.Equal(t, []string{"a.cc", "a.cc"}, got)
	})

	t.Run("escapes shell metacharacters", func(t *testing.T) {
		got := FilterSourceFiles([]string{"my file.cpp", "x;rm -rf.h", "plain.h"})
		require.Len(t, got, 3)
		assert.Equal(t, "'my file.cpp'", got[0])
		assert.Equal(t, "'x;rm -rf.h'", got[1])
		assert.Equal(t, "plain.h", got[2])
	})
}

func TestFilterSkipVendored(t *testing.T) {
	files := []string{"src/main.cc", "vendor/lib/dep.cc", "third_party/x.h"}

	assert.Equal(t, files, Filter{}.Apply(files))
	assert.Equal(t, []string{"src/main.cc"}, Filter{SkipVendored: true}.Apply(files))
}

func TestParseOutput(t *testing.T) {
	t.Run("parses each line independently", func(t *testing.T) {
		output := strings.Join([]string{
			`test1.cpp:0: No copyright message found.  You should have a line: "Copyright [year] <Copyright Owner>"  [legal/copyright] [5]`,
			`test2.cpp:4: { should almost always be at the end of the previous line  [whitespace/braces] [4]`,
		}, "\n")

		got := ParseOutput(output)

		assert.Equal(t, []Diagnostic{
			{
				Path:    "test1.cpp",
				Line:    0,
				Column:  0,
				Message: `cpplint: No copyright message found.  You should have a line: "Copyright [year] <Copyright Owner>"  [legal/copyright] [5]`,
				Level:   LevelWarning,
			},
			{
				Path:    "test2.cpp",
				Line:    4,
				Column:  0,
				Message: "cpplint: { should almost always be at the end of the previous line  [whitespace/braces] [4]",
				Level:   LevelWarning,
			},
		}, got)
	})

	t.Run("short lines", func(t *testing.T) {
		got := ParseOutput("a.cpp:0: msg1\nb.cpp:4: msg2")
		require.Len(t, got, 2)
		assert.Equal(t, "a.cpp", got[0].Path)
		assert.Equal(t, 0, got[0].Line)
		assert.Equal(t, "cpplint: msg1", got[0].Message)
		assert.Equal(t, "b.cpp", got[1].Path)
		assert.Equal(t, 4, got[1].Line)
		assert.Equal(t, "cpplint: msg2", got[1].Message)
		assert.Zero(t, got[1].Column)
	})

	t.Run("skips blank and colon-less lines", func(t *testing.T) {
		got := ParseOutput("\nDone processing best.cpp\n   \nbest.cpp:5: Missing space before {  [whitespace/braces] [5]\n")
		require.Len(t, got, 1)
		assert.Equal(t, "best.cpp", got[0].Path)
		assert.Equal(t, 5, got[0].Line)
	})

	t.Run("non-numeric line becomes zero", func(t *testing.T) {
		got := ParseOutput("Total errors found: 3\nx.cc:abc: odd")
		require.Len(t, got, 2)
		assert.Equal(t, "Total errors found", got[0].Path)
		assert.Equal(t, 3, got[0].Line)
		assert.Equal(t, "cpplint: ", got[0].Message)
		assert.Equal(t, 0, got[1].Line)
	})

	t.Run("message keeps inner colons", func(t *testing.T) {
		got := ParseOutput("x.cc:7: Use int16/int64/etc: not short  [runtime/int] [4]")
		require.Len(t, got, 1)
		assert.Equal(t, "cpplint: Use int16/int64/etc: not short  [runtime/int] [4]", got[0].Message)
	})

	t.Run("trailing colons are dropped", func(t *testing.T) {
		got := ParseOutput("a.cpp:1:msg:\nb.cpp:2: ends here::\nc.cpp:3:\nd.cpp::")
		require.Len(t, got, 3)
		assert.Equal(t, "cpplint: msg", got[0].Message)
		assert.Equal(t, "cpplint: ends here", got[1].Message)
		assert.Equal(t, "c.cpp", got[2].Path)
		assert.Equal(t, 3, got[2].Line)
		assert.Equal(t, "cpplint: ", got[2].Message)
	})

	t.Run("empty output", func(t *testing.T) {
		assert.Empty(t, ParseOutput(""))
	})
}

func TestParseLineNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"5", 5},
		{" 42", 42},
		{"12abc", 12},
		{"abc", 0},
		{"", 0},
		{"-3", -3},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLineNumber(tt.in))
		})
	}
}

func TestViolationLevel(t *testing.T) {
	assert.Equal(t, LevelWarning, violationLevel("cpplint: Missing space before {  [whitespace/braces] [5]"))
	assert.Equal(t, LevelError, violationLevel("cpplint: HIGH risk construct"))
	assert.Equal(t, LevelError, violationLevel("cpplint: [HIGH] risk construct"))
	assert.Equal(t, LevelWarning, violationLevel("cpplint: risk HIGH"))
	assert.Equal(t, LevelWarning, violationLevel("cpplint: high risk"))
	assert.Equal(t, LevelWarning, violationLevel("cpplint: "))
}

func TestCorrelate(t *testing.T) {
	best := newFakePatch("/repo/best.cpp", "best.cpp", 1, 5)
	other := newFakePatch("/repo/other.cc", "other.cc", 2)
	patches := []Patch{best, other}

	t.Run("joins on path and added line", func(t *testing.T) {
		diags := []Diagnostic{
			{Path: "/repo/best.cpp", Line: 5, Message: "cpplint: a", Level: LevelWarning},
			{Path: "/repo/best.cpp", Line: 3, Message: "cpplint: unchanged line"},
			{Path: "/repo/missing.cpp", Line: 5, Message: "cpplint: not in diff"},
			{Path: "best.cpp", Line: 5, Message: "cpplint: relative path does not match"},
			{Path: "/repo/other.cc", Line: 2, Message: "cpplint: b", Level: LevelError},
		}

		got := Correlate(diags, patches)

		require.Len(t, got, 2)
		assert.Equal(t, "best.cpp", got[0].Path)
		assert.Equal(t, 5, got[0].LineNo())
		assert.Equal(t, LevelWarning, got[0].Level)
		assert.Equal(t, "cpplint: a", got[0].Message)
		assert.Equal(t, RunnerName, got[0].Runner)
		assert.Same(t, best.lines[1], got[0].Line)

		assert.Equal(t, "other.cc", got[1].Path)
		assert.Equal(t, LevelError, got[1].Level)
	})

	t.Run("keeps diagnostic order and duplicates", func(t *testing.T) {
		diags := []Diagnostic{
			{Path: "/repo/other.cc", Line: 2, Message: "first"},
			{Path: "/repo/best.cpp", Line: 1, Message: "second"},
			{Path: "/repo/other.cc", Line: 2, Message: "third"},
		}

		got := Correlate(diags, patches)

		require.Len(t, got, 3)
		assert.Equal(t, "first", got[0].Message)
		assert.Equal(t, "second", got[1].Message)
		assert.Equal(t, "third", got[2].Message)
	})

	t.Run("first patch for a path wins", func(t *testing.T) {
		dup := newFakePatch("/repo/best.cpp", "renamed.cpp", 9)
		got := Correlate([]Diagnostic{{Path: "/repo/best.cpp", Line: 9}}, []Patch{best, dup})
		assert.Empty(t, got)
	})

	t.Run("no patches", func(t *testing.T) {
		assert.Empty(t, Correlate([]Diagnostic{{Path: "/repo/best.cpp", Line: 5}}, nil))
	})
}

func TestRunner(t *testing.T) {
	logger := loggy.NewNoopLogger()
	ctx := context.Background()

	t.Run("nil patches skip the linter", func(t *testing.T) {
		linter := &fakeLinter{}
		r := NewRunner(linter, fakeLocator{root: "/repo"}, logger)

		got, err := r.Run(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
		assert.Zero(t, linter.calls)
	})

	t.Run("no source files skip the linter", func(t *testing.T) {
		linter := &fakeLinter{}
		r := NewRunner(linter, fakeLocator{err: errors.New("not a repo")}, logger)

		got, err := r.Run(ctx, []Patch{newFakePatch("/repo/main.go", "main.go", 1)})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, linter.calls)
	})

	t.Run("patches without additions are not linted", func(t *testing.T) {
		linter := &fakeLinter{}
		r := NewRunner(linter, fakeLocator{root: "/repo"}, logger)

		got, err := r.Run(ctx, []Patch{newFakePatch("/repo/gone.cpp", "gone.cpp")})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, linter.calls)
	})

	t.Run("end to end with one added line", func(t *testing.T) {
		linter := &fakeLinter{output: "/repo/best.cpp:5: Missing space before {  [whitespace/braces] [5]\n" +
			"/repo/best.cpp:0: No copyright message found.  [legal/copyright] [5]\n"}
		r := NewRunner(linter, fakeLocator{root: "/repo"}, logger, WithDir("/repo/sub"))
		patches := []Patch{
			newFakePatch("/repo/best.cpp", "best.cpp", 5),
			newFakePatch("/repo/notes.txt", "notes.txt", 1),
		}

		got, err := r.Run(loggy.WithRequestID(ctx, "run-1"), patches)
		require.NoError(t, err)

		assert.Equal(t, 1, linter.calls)
		assert.Equal(t, "/repo", linter.dir)
		assert.Equal(t, []string{"/repo/best.cpp"}, linter.files)

		require.Len(t, got, 1)
		assert.Equal(t, LevelWarning, got[0].Level)
		assert.Equal(t, "cpplint: Missing space before {  [whitespace/braces] [5]", got[0].Message)
		assert.Equal(t, "best.cpp", got[0].Path)
	})

	t.Run("idempotent", func(t *testing.T) {
		linter := &fakeLinter{output: "/repo/best.cpp:5: x\n/repo/best.cpp:1: y\n"}
		r := NewRunner(linter, fakeLocator{root: "/repo"}, logger)
		patches := []Patch{newFakePatch("/repo/best.cpp", "best.cpp", 1, 5)}

		first, err := r.Run(ctx, patches)
		require.NoError(t, err)
		second, err := r.Run(ctx, patches)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("locator failure propagates", func(t *testing.T) {
		linter := &fakeLinter{}
		r := NewRunner(linter, fakeLocator{err: errors.New("no repository")}, logger)

		_, err := r.Run(ctx, []Patch{newFakePatch("/repo/a.cc", "a.cc", 1)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locating working tree")
		assert.Zero(t, linter.calls)
	})

	t.Run("missing linter fails the run", func(t *testing.T) {
		inv := NewInvoker(InvokerOptions{Executable: "nestlint-missing-linter"}, logger)
		r := NewRunner(inv, fakeLocator{root: t.TempDir()}, logger)

		got, err := r.Run(ctx, []Patch{newFakePatch("/repo/best.cpp", "best.cpp", 5)})
		require.ErrorIs(t, err, ErrExecutableNotFound)
		assert.Nil(t, got)
	})

	t.Run("missing linter is fine without source files", func(t *testing.T) {
		inv := NewInvoker(InvokerOptions{Executable: "nestlint-missing-linter"}, logger)
		r := NewRunner(inv, fakeLocator{root: t.TempDir()}, logger)

		got, err := r.Run(ctx, []Patch{newFakePatch("/repo/README.md", "README.md", 1)})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("linter failure propagates", func(t *testing.T) {
		linter := &fakeLinter{err: errors.New("boom")}
		r := NewRunner(linter, fakeLocator{root: "/repo"}, logger)

		_, err := r.Run(ctx, []Patch{newFakePatch("/repo/a.cc", "a.cc", 1)})
		require.Error(t, err)
	})
}

// writeScript writes an executable shell script standing in for cpplint
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}

	path := filepath.Join(t.TempDir(), "fake-cpplint")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755)
	require.NoError(t, err, "Failed to write fake linter")
	return path
}

func TestInvoker(t *testing.T) {
	logger := loggy.NewNoopLogger()
	ctx := context.Background()

	t.Run("captures stderr and ignores exit status", func(t *testing.T) {
		script := writeScript(t, `for f in "$@"; do echo "$f:5: Missing space before {  [whitespace/braces] [5]" >&2; done
echo "this goes to stdout"
exit 1
`)
		inv := NewInvoker(InvokerOptions{Executable: script}, logger)

		out, err := inv.Run(ctx, t.TempDir(), []string{"a.cc", "'b c.h'"})
		require.NoError(t, err)
		assert.Equal(t, "a.cc:5: Missing space before {  [whitespace/braces] [5]\n"+
			"b c.h:5: Missing space before {  [whitespace/braces] [5]\n", out)
	})

	t.Run("runs in the working directory", func(t *testing.T) {
		script := writeScript(t, "pwd >&2\n")
		dir := t.TempDir()
		inv := NewInvoker(InvokerOptions{Executable: script}, logger)

		before, err := os.Getwd()
		require.NoError(t, err)

		out, err := inv.Run(ctx, dir, []string{"a.cc"})
		require.NoError(t, err)

		want, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		got, err := filepath.EvalSymlinks(strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Equal(t, want, got)

		after, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, before, after, "process working directory must not change")
	})

	t.Run("passes extra options verbatim", func(t *testing.T) {
		script := writeScript(t, `echo "$@" >&2`+"\n")
		inv := NewInvoker(InvokerOptions{Executable: script, ExtraOptions: "--verbose=3 --filter=-legal"}, logger)

		out, err := inv.Run(ctx, t.TempDir(), []string{"a.cc", "b.h"})
		require.NoError(t, err)
		assert.Equal(t, "--verbose=3 --filter=-legal a.cc b.h\n", out)
	})

	t.Run("empty file list does not spawn", func(t *testing.T) {
		inv := NewInvoker(InvokerOptions{Executable: "/definitely/not/here"}, logger)

		out, err := inv.Run(ctx, t.TempDir(), nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("missing executable is an error", func(t *testing.T) {
		inv := NewInvoker(InvokerOptions{Executable: "nestlint-missing-linter"}, logger)

		out, err := inv.Run(ctx, t.TempDir(), []string{"a.cc"})
		require.ErrorIs(t, err, ErrExecutableNotFound)
		assert.Empty(t, out)
	})

	t.Run("command not found from the shell is an error", func(t *testing.T) {
		script := writeScript(t, "echo \"sh: 1: cpplint: not found\" >&2\nexit 127\n")
		inv := NewInvoker(InvokerOptions{Executable: script}, logger)

		_, err := inv.Run(ctx, t.TempDir(), []string{"a.cc"})
		require.ErrorIs(t, err, ErrExecutableNotFound)
		assert.Contains(t, err.Error(), "cpplint: not found")
	})

	t.Run("timeout", func(t *testing.T) {
		script := writeScript(t, "sleep 3\n")
		inv := NewInvoker(InvokerOptions{Executable: script, Timeout: 50_000_000}, logger)

		_, err := inv.Run(ctx, t.TempDir(), []string{"a.cc"})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("command line", func(t *testing.T) {
		inv := NewInvoker(InvokerOptions{}, logger)
		assert.Equal(t, DefaultExecutable, inv.Executable())
		assert.Equal(t, "cpplint  a.cc b.h", inv.CommandLine([]string{"a.cc", "b.h"}))
	})

	t.Run("check executable", func(t *testing.T) {
		inv := NewInvoker(InvokerOptions{Executable: "nestlint-missing-linter"}, logger)
		_, err := inv.CheckExecutable()
		assert.ErrorIs(t, err, ErrExecutableNotFound)

		script := writeScript(t, "exit 0\n")
		inv = NewInvoker(InvokerOptions{Executable: script}, logger)
		path, err := inv.CheckExecutable()
		require.NoError(t, err)
		assert.Equal(t, script, path)

		inv = NewInvoker(InvokerOptions{Executable: "sh -c true"}, logger)
		_, err = inv.CheckExecutable()
		assert.NoError(t, err, "only the first word names the binary")
	})
}
