package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddr_FlagTakesPrecedenceOverEnv(t *testing.T) {
	t.Setenv("ANALYZER_ADDR", ":9090")
	assert.Equal(t, ":7070", addr(":7070"))
}

func TestAddr_FallsBackToEnv(t *testing.T) {
	t.Setenv("ANALYZER_ADDR", ":9090")
	assert.Equal(t, ":9090", addr(""))
}

func TestAddr_DefaultsWhenNothingSet(t *testing.T) {
	t.Setenv("ANALYZER_ADDR", "")
	assert.Equal(t, ":8080", addr(""))
}
