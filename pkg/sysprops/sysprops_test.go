package sysprops

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededFromProcess(t *testing.T) {
	assert.Equal(t, runtime.GOOS, Lookup(OSName))
	_, ok := Get(UserDir)
	assert.True(t, ok)
}

func TestScoped_RestoresOnExit(t *testing.T) {
	Set("keep.me", "before")

	Scoped(func() {
		Set("keep.me", "during")
		Set("added.inside", "x")
		assert.Equal(t, "during", Lookup("keep.me"))
	})

	assert.Equal(t, "before", Lookup("keep.me"))
	_, ok := Get("added.inside")
	assert.False(t, ok)
	Unset("keep.me")
}

func TestScoped_RestoresOnPanic(t *testing.T) {
	assert.Panics(t, func() {
		Scoped(func() {
			Set("panic.prop", "x")
			panic("boom")
		})
	})
	_, ok := Get("panic.prop")
	assert.False(t, ok)
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := All()
	all["mutated.copy"] = "x"
	_, ok := Get("mutated.copy")
	assert.False(t, ok)
}
