// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package ingestion

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// declNodeTypes maps, per language, the grammar node types that count as a
// function-like or class-like declaration to the Declaration.Kind they
// produce. Node type names come directly from each smacker grammar.
var declNodeTypes = map[string]map[string]string{
	"go": {
		"function_declaration": "function",
		"method_declaration":   "function",
		"type_spec":            "class",
	},
	"python": {
		"function_definition": "function",
		"class_definition":    "class",
	},
	"javascript": {
		"function_declaration": "function",
		"method_definition":    "function",
		"class_declaration":    "class",
	},
	"typescript": {
		"function_declaration":  "function",
		"method_definition":     "function",
		"class_declaration":     "class",
		"interface_declaration": "class",
	},
	"csharp": {
		"method_declaration":       "function",
		"local_function_statement": "function",
		"class_declaration":        "class",
		"interface_declaration":    "class",
		"struct_declaration":       "class",
	},
	"java": {
		"method_declaration":      "function",
		"constructor_declaration": "function",
		"class_declaration":       "class",
		"interface_declaration":   "class",
	},
}

// importNodeTypes names the grammar node type whose source text is taken
// as one import line, per language.
var importNodeTypes = map[string]string{
	"go":         "import_spec",
	"python":     "import_statement",
	"javascript": "import_statement",
	"typescript": "import_statement",
	"csharp":     "using_directive",
	"java":       "import_declaration",
}

// commentNodeType is "comment" for every smacker grammar used here.
const commentNodeType = "comment"

func grammarFor(language string) *sitter.Language {
	switch language {
	case "go":
		return golang.GetLanguage()
	case "python":
		return python.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	case "csharp":
		return csharp.GetLanguage()
	case "java":
		return java.GetLanguage()
	}
	return nil
}

// extractTreeSitter parses content with the grammar for language and fills
// record's Functions, Classes, Imports, and Comments.
func extractTreeSitter(language string, content []byte, record *StructuralRecord) error {
	lang := grammarFor(language)
	if lang == nil {
		return fmt.Errorf("no tree-sitter grammar registered for %s", language)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	nodeKinds := declNodeTypes[language]
	importKind := importNodeTypes[language]

	var comments []Comment
	var decls []Declaration

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}

		switch {
		case n.Type() == commentNodeType:
			comments = append(comments, classifyComment(n, content))
		case n.Type() == importKind:
			record.Imports = append(record.Imports, strings.TrimSpace(n.Content(content)))
		default:
			if kind, ok := nodeKinds[n.Type()]; ok {
				decls = append(decls, declarationFromNode(n, content, kind))
			}
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	attachDocComments(decls, comments)

	for _, d := range decls {
		if d.Kind == "function" {
			record.Functions = append(record.Functions, d)
		} else {
			record.Classes = append(record.Classes, d)
		}
	}
	record.Comments = comments

	return nil
}

// declarationFromNode builds a Declaration from a function/class-like
// node, pulling its name from the grammar's "name" field (present across
// every declaration node type used here) and its signature from the full
// node text up to the first newline.
func declarationFromNode(n *sitter.Node, content []byte, kind string) Declaration {
	name := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = nameNode.Content(content)
	}

	text := n.Content(content)
	signature := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		signature = text[:idx]
	}
	signature = strings.TrimSpace(signature)

	return Declaration{
		Name:      name,
		Kind:      kind,
		Signature: signature,
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
}

func classifyComment(n *sitter.Node, content []byte) Comment {
	text := n.Content(content)
	kind := "line"
	trimmed := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(trimmed, "/**") || strings.HasPrefix(trimmed, "///"):
		kind = "doc"
	case strings.HasPrefix(trimmed, "/*"):
		kind = "block"
	}
	return Comment{
		Text:      text,
		StartLine: int(n.StartPoint().Row) + 1,
		Kind:      kind,
	}
}

// attachDocComments associates a comment with the declaration immediately
// following it (the line-adjacent convention Go, Java, and C# doc comments
// use). Python docstrings live inside the function/class body as string
// nodes, not comment nodes, so they are neither collected as comments nor
// attached; a Python "#" comment on the line directly above a def or class
// is attached like any other.
func attachDocComments(decls []Declaration, comments []Comment) {
	for i := range decls {
		for _, c := range comments {
			if c.StartLine == decls[i].StartLine-1 {
				decls[i].DocComment = c.Text
				break
			}
		}
	}
}
