// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later
package ingestion

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuralExtractor_Go(t *testing.T) {
	path := filepath.Join("testdata", "sample_project", "handlers", "handler.go")
	e := NewStructuralExtractor(nil)

	record, err := e.ExtractFile(FileInfo{Path: "handlers/handler.go", FullPath: path, Language: "go"})
	require.NoError(t, err)

	names := make([]string, 0, len(record.Functions))
	for _, fn := range record.Functions {
		names = append(names, fn.Name)
	}
	assert.Contains(t, names, "HandleHealth")
	assert.Contains(t, names, "HandleUsers")
	assert.Contains(t, names, "listUsers")
	assert.Contains(t, names, "createUser")
	assert.NotEmpty(t, record.Imports)
}

func TestStructuralExtractor_SimplifiedScala(t *testing.T) {
	content := []byte(`
package com.example

import com.example.util.Helper

// Represents a user
class User(name: String) {
  def greet(): String = {
    "hello"
  }
}
`)
	record := &StructuralRecord{}
	extractSimplified("scala", content, record)

	assert.Len(t, record.Classes, 1)
	assert.Equal(t, "User", record.Classes[0].Name)
	assert.Len(t, record.Functions, 1)
	assert.Equal(t, "greet", record.Functions[0].Name)
	assert.NotEmpty(t, record.Imports)
}

func TestStructuralExtractor_TruncatesLargeFile(t *testing.T) {
	path := filepath.Join("testdata", "sample_project", "main.go")
	e := NewStructuralExtractor(nil)
	e.SetMaxCodeTextSize(10)

	_, err := e.ExtractFile(FileInfo{Path: "main.go", FullPath: path, Language: "go"})
	require.NoError(t, err)
	assert.Equal(t, 1, e.GetTruncatedCount())

	e.ResetTruncatedCount()
	assert.Equal(t, 0, e.GetTruncatedCount())
}
