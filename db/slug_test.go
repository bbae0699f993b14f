package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Spaced   Out  ", "spaced-out"},
		{"C++ & Go: A Comparison!", "c-go-a-comparison"},
		{"already-a-slug", "already-a-slug"},
		{"ÅÄÖ", "untitled"},
		{"", "untitled"},
		{"Trailing---", "trailing"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}
