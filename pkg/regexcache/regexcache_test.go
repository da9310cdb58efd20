package regexcache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileMemoizes(t *testing.T) {
	c := New()

	first, err := c.Compile(`^std::.*`)
	require.NoError(t, err)
	second, err := c.Compile(`^std::.*`)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func TestCompileMemoizesFailures(t *testing.T) {
	c := New()

	_, err1 := c.Compile(`(`)
	require.Error(t, err1)
	_, err2 := c.Compile(`(`)
	require.Error(t, err2)

	assert.Equal(t, err1, err2)
	assert.Equal(t, 1, c.Len())
}

func TestCompileConcurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			re, err := c.Compile(`^lib.*\.so\..*`)
			if err != nil {
				t.Error(err)
				return
			}
			if !re.MatchString("libfoo.so.3") {
				t.Error("expected a match")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}

func TestDefaultCache(t *testing.T) {
	re, err := Compile(`abc`)
	require.NoError(t, err)
	assert.True(t, re.MatchString("xabcy"))
}
