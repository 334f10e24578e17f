package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	assert.Contains(t, info.String(), "tabula")
	assert.Contains(t, info.String(), "Version:")
	assert.Contains(t, info.String(), "Go Version:")
}

func TestBuildInfoString(t *testing.T) {
	info := BuildInfo{
		Version:   "v1.0.0",
		BuildDate: "2024-01-01T00:00:00Z",
		GitCommit: "abc123def456",
		GoVersion: "go1.24.0",
		Module:    "github.com/paveg/tabula",
	}

	str := info.String()
	assert.Contains(t, str, "Version: v1.0.0\n")
	assert.Contains(t, str, "Build Date: 2024-01-01T00:00:00Z")
	assert.Contains(t, str, "Git Commit: abc123d")
	assert.Contains(t, str, "Go Version: go1.24.0")
	assert.Contains(t, str, "Module: github.com/paveg/tabula")
}

func TestBuildInfoStringDirty(t *testing.T) {
	original := GitCommit
	defer func() { GitCommit = original }()

	GitCommit = "abc123def-dirty"
	info := Info()

	assert.True(t, info.Dirty)
	str := info.String()
	assert.Contains(t, str, "(dirty)")
	assert.Contains(t, str, "Git Commit: abc123d\n")
}

func TestBuildInfoStringUnknownFields(t *testing.T) {
	info := BuildInfo{
		Version:   "dev",
		BuildDate: unknownValue,
		GitCommit: unknownValue,
		GoVersion: "go1.24.0",
	}

	str := info.String()
	assert.NotContains(t, str, "Build Date")
	assert.NotContains(t, str, "Git Commit")
}
