package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		baseDir string
		want    string
	}{
		{"relative joined", "inputs", "/project", filepath.Join("/project", "inputs")},
		{"absolute unchanged", "/data/cases", "/project", "/data/cases"},
		{"no base dir", "outputs", "", "outputs"},
		{"empty path", "", "/project", ""},
		{"parent reference cleaned", "../shared/.env", "/project/sub", filepath.Join("/project", "shared", ".env")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.path, tt.baseDir))
		})
	}
}

func TestResolvePaths(t *testing.T) {
	assert.Nil(t, ResolvePaths(nil, "/base"))
	assert.Nil(t, ResolvePaths([]string{}, "/base"))
	assert.Equal(t,
		[]string{"/abs", filepath.Join("/base", "rel")},
		ResolvePaths([]string{"/abs", "rel"}, "/base"))
}
