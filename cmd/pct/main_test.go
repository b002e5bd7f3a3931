package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPct(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetContext(context.Background())
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileMinimalModule(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "m.pct", "(module m :version 1)")
	outDir := filepath.Join(dir, "out")

	require.NoError(t, runPct(t, "compile", input, "-o", outDir))

	generated, err := os.ReadFile(filepath.Join(outDir, "m.go"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), "// Code generated from pct module m. DO NOT EDIT.")
}

func TestCompileRuntimeFlag(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "svc.pct", `(module svc :version 1
		(type User (field id UUID :immutable :generated) (field name String :min-len 1)))`)
	outDir := filepath.Join(dir, "out")

	require.NoError(t, runPct(t, "compile", input, "-o", outDir, "--runtime"))

	generated, err := os.ReadFile(filepath.Join(outDir, "svc.go"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), `"goa.design/pct/runtime"`)
	assert.Contains(t, string(generated), "func UserFromInput(")
}

func TestCompileRejectsEffectErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "bad.pct", `(module bad :version 1
		(effect-set db-read [:reads user-store])
		(fn f :effects [db-read]
			(param x String)
			(returns (union (ok String :http 200)))
			(insert! user-store x)))`)

	err := runPct(t, "compile", input, "-o", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error(s) found")
}

func TestCheckReportsSummary(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "m.pct", "(module m :version 3)")
	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	defer rootCmd.SetErr(nil)
	require.NoError(t, runPct(t, "check", input))
	assert.Contains(t, stderr.String(), "Module 'm' v3: 0 error(s), 0 warning(s)")
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "m.pct", "(module m :version 1)")
	require.NoError(t, runPct(t, "parse", input))
}

func TestGenerateFromYAML(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "user-service.spec.yaml", `spec: SPEC-2024-0042
title: "User service"
owner: platform-team
domain:
  User:
    fields:
      - name: required, string, 1-200 chars
      - email: required, email format, unique
      - id: auto-generated, immutable
endpoints:
  get-user:
    description: "Returns a user by ID"
    input: user id (from URL)
    outputs:
      - success: the user found (200)
      - not found: when the ID doesn't exist (404)
    constraints:
      - read-only
quality:
  - all functions must be total
`)
	outFile := filepath.Join(dir, "user-service.pct")
	require.NoError(t, runPct(t, "generate", input, "-o", outFile))

	generated, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(generated), "(module user-service")
	assert.Contains(t, string(generated), "(type User")
	assert.Contains(t, string(generated), "(fn get-user")
}

func TestScaffoldCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "svc.pct", `(module user-service :version 1
		(type User
			(field id UUID :immutable :generated)
			(field name String :min-len 1))
		(effect-set db-write [:writes user-store :reads user-store])
		(fn create-user
			:effects [db-write]
			(param input {:name String})
			(returns (union (ok User :http 201)))
			(match (insert! user-store (build User input))
				(err :unique-violation) (err :duplicate {:name (. input name)})
				(ok entity)             (ok entity))))`)
	outDir := filepath.Join(dir, "web")

	require.NoError(t, runPct(t, "scaffold", input, "-o", outDir))

	for _, f := range []string{"go.mod", "main.go", "handlers.go", "html.go",
		filepath.Join("gen", "user_service", "doc.go"),
		filepath.Join("gen", "user_service", "user_service.go")} {
		_, err := os.Stat(filepath.Join(outDir, f))
		assert.NoError(t, err, f)
	}
}
