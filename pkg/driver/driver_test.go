package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ObscureBrandon/toyc/pkg/source"
)

func TestCompilePipeline(t *testing.T) {
	c := NewCompiler(DefaultConfig())

	result, err := c.CompileString(context.Background(), "test.toy", "x := 5; y := x + 3;")
	require.NoError(t, err)
	require.False(t, result.HasErrors())

	assert.Len(t, result.Program.Statements, 2)
	assert.Equal(t, "int", string(result.Symbols["x"]))
	assert.NotEmpty(t, result.TAC)
	assert.NotEmpty(t, result.Optimized)
	assert.NotEmpty(t, result.Assembly)
	assert.Equal(t, "id1", result.IdentifierMap["x"])
	assert.LessOrEqual(t, len(result.Optimized), len(result.TAC))
}

func TestCompileParseError(t *testing.T) {
	c := NewCompiler(DefaultConfig())

	result, err := c.CompileString(context.Background(), "bad.toy", "x := ;")
	require.Error(t, err)
	require.True(t, result.HasErrors())

	// Later stages must not have run.
	assert.Nil(t, result.TAC)
	assert.Nil(t, result.Assembly)
}

func TestOptimizationDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Optimize = false
	c := NewCompiler(cfg)

	result, err := c.CompileString(context.Background(), "test.toy", "x := 5 + 3;")
	require.NoError(t, err)

	// Unoptimized TAC passes through: temp plus final assignment.
	assert.Len(t, result.Optimized, 2)
	assert.Zero(t, result.Stats.OriginalInstructionCount)
}

func TestAssemblyDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmitAssembly = false
	c := NewCompiler(cfg)

	result, err := c.CompileString(context.Background(), "test.toy", "x := 5;")
	require.NoError(t, err)
	assert.Empty(t, result.Assembly)
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.toy")
	require.NoError(t, os.WriteFile(path, []byte("x := 1 + 2;\n"), 0o644))

	c := NewCompiler(DefaultConfig())
	result, err := c.CompileFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "id1 = #1 + #2", result.Optimized[0].String())
}

func TestCompileFileMissing(t *testing.T) {
	c := NewCompiler(DefaultConfig())
	_, err := c.CompileFile(context.Background(), "does/not/exist.toy")
	require.Error(t, err)
}

func TestExecute(t *testing.T) {
	c := NewCompiler(DefaultConfig())

	sf := source.NewEvalSource("read a; read b; write a + b;")
	_, run, err := c.Execute(context.Background(), sf, 3, 4)
	require.NoError(t, err)
	require.Len(t, run.Output, 1)
	assert.Equal(t, 7.0, run.Output[0])
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `optimize = false
emit-assembly = true

[output]
tac = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Optimize)
	assert.True(t, cfg.EmitAssembly)
	assert.True(t, cfg.Output.TAC)
	// Unset keys keep defaults.
	assert.True(t, cfg.Output.Stats)
}

func TestLoadConfigIfPresentFallsBack(t *testing.T) {
	cfg, err := LoadConfigIfPresent(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
