package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/tools/go/analysis/analysistest"
)

func TestOsExitAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), OsExitAnalyzer, "exitmain")
}

func TestFatalLogAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), FatalLogAnalyzer, "fatallib", "exitmain")
}

func TestAnalyzers(t *testing.T) {
	checks := analyzers()

	names := make(map[string]bool, len(checks))
	for _, a := range checks {
		assert.False(t, names[a.Name], "duplicate analyzer %s", a.Name)
		names[a.Name] = true
	}

	assert.True(t, names["osexit"])
	assert.True(t, names["fatallog"])
	assert.True(t, names["errcheck"])
	assert.True(t, names["SA4006"])
	assert.False(t, names["ST1000"])
	assert.False(t, names["ST1003"])
}
