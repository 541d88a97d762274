package chanx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnboundedChan_Order(t *testing.T) {
	c := NewUnboundedChan[int](4)
	total := 1000
	for i := 0; i < total; i++ {
		c.In <- i
	}
	c.Close()

	got := make([]int, 0, total)
	for v := range c.Out {
		got = append(got, v)
	}
	assert.Len(t, got, total)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestUnboundedChan_CloseDrains(t *testing.T) {
	c := NewUnboundedChan[string](1)
	c.In <- "a"
	c.In <- "b"
	c.In <- "c"
	c.Close()

	var got []string
	for v := range c.Out {
		got = append(got, v)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
