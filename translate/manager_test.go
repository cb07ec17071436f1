package translate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpgkit/cpg/config"
	"github.com/cpgkit/cpg/graph"
	"github.com/cpgkit/cpg/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSkipsUnregisteredExtension(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.xyz")
	require.NoError(t, os.WriteFile(file, []byte("whatever"), 0o644))

	m := translate.NewManager(config.DefaultConfig())
	result, err := m.Build(context.Background(), []string{file}, dir)

	require.NoError(t, err)
	assert.Empty(t, result.Units)
	events := result.Report.Events()
	require.Len(t, events, 1)
	assert.Equal(t, file, events[0].Source)
}

func TestBuildLenientSkipsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.go")

	m := translate.NewManager(config.DefaultConfig())
	result, err := m.Build(context.Background(), []string{missing}, dir)

	require.NoError(t, err, "lenient parsing tolerates a missing/unreadable file")
	assert.Empty(t, result.Units)
	assert.True(t, result.Report.HasErrors())
}

func TestBuildStrictAbortsOnUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.go")

	cfg := config.DefaultConfig()
	cfg.Parsing = config.Strict
	m := translate.NewManager(cfg)
	result, err := m.Build(context.Background(), []string{missing}, dir)

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestBuildParsesGoLikeSource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	src := `package main

func add(a int, b int) int {
	return a + b
}
`
	require.NoError(t, os.WriteFile(file, []byte(src), 0o644))

	m := translate.NewManager(config.DefaultConfig())
	result, err := m.Build(context.Background(), []string{file}, dir)

	require.NoError(t, err)
	require.Len(t, result.Units, 1)
	assert.False(t, result.Report.HasErrors())
}

func TestBuildParsesCFamilySource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "point.c")
	src := `struct Point {
	int x;
	int y;
};

int add(int a, int b) {
	return a + b;
}
`
	require.NoError(t, os.WriteFile(file, []byte(src), 0o644))

	m := translate.NewManager(config.DefaultConfig())
	result, err := m.Build(context.Background(), []string{file}, dir)

	require.NoError(t, err)
	require.Len(t, result.Units, 1)
	assert.False(t, result.Report.HasErrors())
}

func TestBuildCFamilyMergesIncludedHeaderDeclarations(t *testing.T) {
	// S1: a header declares a record; a source file #includes it and
	// supplies out-of-class definitions for its constructor and a method.
	// Only the source file is handed to Build as a top-level input — the
	// header's record has to arrive via include resolution, not by the
	// header also being parsed as its own translation unit.
	dir := t.TempDir()
	header := `class SomeClass {
public:
    SomeClass();
    int DoSomething();
    int someField;
};
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "someclass.h"), []byte(header), 0o644))

	source := `#include "someclass.h"

SomeClass::SomeClass() {}

int SomeClass::DoSomething() {
	return someField;
}
`
	sourceFile := filepath.Join(dir, "someclass.cpp")
	require.NoError(t, os.WriteFile(sourceFile, []byte(source), 0o644))

	cfg := config.DefaultConfig()
	cfg.RootDir = dir
	m := translate.NewManager(cfg)
	result, err := m.Build(context.Background(), []string{sourceFile}, dir)
	require.NoError(t, err)
	require.Len(t, result.Units, 1, "only the source file is a top-level input")

	var rec *graph.Node
	for _, n := range result.Graph.NodesOfKind(graph.KindRecord) {
		if n.Name == "SomeClass" {
			rec = n
		}
	}
	require.NotNil(t, rec, "the header's record must be merged into the source file's graph")

	var ctor, method *graph.Node
	for _, e := range rec.EdgesOf(graph.EdgeAST) {
		switch {
		case e.Dst.Kind() == graph.KindConstructor:
			ctor = e.Dst
		case e.Dst.Kind() == graph.KindMethod && e.Dst.Name == "DoSomething":
			method = e.Dst
		}
	}
	require.NotNil(t, ctor, "SomeClass must own the constructor declared in the header")
	require.NotNil(t, method, "SomeClass must own the method declared in the header")
	assert.NotEmpty(t, ctor.Targets(graph.EdgeAST), "out-of-class constructor body was attached to the header's stub")
	assert.NotEmpty(t, method.Targets(graph.EdgeAST), "out-of-class DoSomething body was attached to the header's stub")
}

func TestBuildParsesPyLikeSource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "point.py")
	src := "class Point:\n" +
		"    def __init__(self, x, y):\n" +
		"        self.x = x\n" +
		"        self.y = y\n" +
		"\n" +
		"def add(a, b):\n" +
		"    return a + b\n"
	require.NoError(t, os.WriteFile(file, []byte(src), 0o644))

	m := translate.NewManager(config.DefaultConfig())
	result, err := m.Build(context.Background(), []string{file}, dir)

	require.NoError(t, err)
	require.Len(t, result.Units, 1)
	assert.False(t, result.Report.HasErrors())
}
