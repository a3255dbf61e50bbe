package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptions_SetDefaults(t *testing.T) {
	opts := Options{}
	opts.setDefaults()
	assert.NotEmpty(t, opts.IgnorePatterns)

	// Explicitly empty patterns are respected.
	custom := Options{IgnorePatterns: []string{}}
	custom.setDefaults()
	assert.Empty(t, custom.IgnorePatterns)
}

func TestOptions_ShouldIgnore(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		in   string
		want bool
	}{
		{"tmp file", Options{IgnorePatterns: []string{"*.tmp"}}, "scratch.tmp", true},
		{"kept file", Options{IgnorePatterns: []string{"*.tmp"}}, "kept.txt", false},
		{"editor backup", Options{IgnorePatterns: []string{"*~"}}, "notes.txt~", true},
		{"hidden ignored", Options{IgnoreHidden: true}, ".env", true},
		{"hidden kept", Options{IgnoreHidden: false}, ".env", false},
		{"dot itself", Options{IgnoreHidden: true}, ".", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.shouldIgnore(tt.in))
		})
	}
}
