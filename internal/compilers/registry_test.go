package compilers_test

import (
	"testing"

	"github.com/programme-lv/grader/internal/compilers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefaults(t *testing.T) {
	r, err := compilers.New()
	require.NoError(t, err)

	assert.Equal(t, 0, r.ID("gcc"))
	assert.Equal(t, 1, r.ID("g++"))
	assert.Equal(t, compilers.InvalidID, r.ID("brainfuck"))
	assert.Equal(t, compilers.InvalidID, r.ID(""))

	assert.True(t, r.Names().Contains("gcc", "g++", "clang", "clang++"))
	assert.Len(t, r.List(), 4)
	assert.Equal(t, "gcc", r.List()[0].Name)
}

func TestRegistryExtraEntries(t *testing.T) {
	r, err := compilers.New(
		compilers.Compiler{Name: "fpc", ID: 10, CompileCmd: []string{"fpc", "-o{exe}", "{src}"}},
		compilers.Compiler{Name: "gcc", ID: 20, CompileCmd: []string{"gcc-13", "-o", "{exe}", "{src}"}},
	)
	require.NoError(t, err)

	assert.Equal(t, 10, r.ID("fpc"))
	assert.Equal(t, 20, r.ID("gcc"))
	_, ok := r.ByID(0)
	assert.False(t, ok, "replaced id should be gone")

	c, ok := r.ByID(10)
	require.True(t, ok)
	assert.Equal(t, []string{"fpc", "-o/tmp/a", "/tmp/a.pas"}, c.Command("/tmp/a.pas", "/tmp/a"))
}

func TestRegistryRejectsConflicts(t *testing.T) {
	_, err := compilers.New(compilers.Compiler{Name: "cc", ID: 1})
	assert.Error(t, err)

	_, err = compilers.New(compilers.Compiler{Name: "neg", ID: -5})
	assert.Error(t, err)

	_, err = compilers.New(compilers.Compiler{ID: 7})
	assert.Error(t, err)
}
