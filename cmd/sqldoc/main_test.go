// Package main provides end-to-end tests for the sqldoc CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sqldoc-labs/sqldoc/internal/cli"
)

// scaffoldProject runs `sqldoc init --example` in a temp directory and
// chdirs into it for the duration of the test.
func scaffoldProject(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	cmd := cli.NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"init", "--example"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init command error = %v", err)
	}
	return tmpDir
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "sqldoc") {
		t.Errorf("version output should contain 'sqldoc', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	expectedCommands := []string{"check", "rules", "doctor", "toc", "assets", "snippets", "build", "serve", "import", "init"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestCheckCommandOnScaffold(t *testing.T) {
	tmpDir := scaffoldProject(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"check",
		"--state", filepath.Join(tmpDir, ".sqldoc", "state.db"),
	})

	if err := cmd.Execute(); err != nil {
		t.Errorf("check command error = %v\noutput: %s", err, buf.String())
	}
}

func TestCheckCommandFindsInjectedProblem(t *testing.T) {
	tmpDir := scaffoldProject(t)

	// A document with a dead anchor and a missing image must fail the run.
	bad := `---
title: "Broken"
---

# Broken

See [nowhere](#no-such-anchor) and ![gone](img/gone.png).
`
	if err := os.WriteFile(filepath.Join(tmpDir, "docs", "broken.md"), []byte(bad), 0o600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"check",
		"--state", filepath.Join(tmpDir, ".sqldoc", "state.db"),
	})

	if err := cmd.Execute(); err == nil {
		t.Errorf("check should fail on a broken document\noutput: %s", buf.String())
	}
	output := buf.String()
	for _, id := range []string{"AN01", "IM01"} {
		if !strings.Contains(output, id) {
			t.Errorf("check output should contain %q, got: %s", id, output)
		}
	}
}

func TestTOCCheckOnScaffold(t *testing.T) {
	tmpDir := scaffoldProject(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"toc", "--check",
		"--state", filepath.Join(tmpDir, ".sqldoc", "state.db"),
	})

	if err := cmd.Execute(); err != nil {
		t.Errorf("toc --check error = %v\noutput: %s", err, buf.String())
	}
}

func TestRulesCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"rules"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("rules command error = %v", err)
	}

	output := buf.String()
	for _, id := range []string{"IM01", "AN01", "SQ01"} {
		if !strings.Contains(output, id) {
			t.Errorf("rules output should contain %q, got: %s", id, output)
		}
	}
}

func TestSnippetsListOnScaffold(t *testing.T) {
	tmpDir := scaffoldProject(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"snippets", "list",
		"--state", filepath.Join(tmpDir, ".sqldoc", "state.db"),
	})

	if err := cmd.Execute(); err != nil {
		t.Errorf("snippets list error = %v\noutput: %s", err, buf.String())
	}
}

func TestBuildCommandOnScaffold(t *testing.T) {
	tmpDir := scaffoldProject(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"build",
		"--out", filepath.Join(tmpDir, "_site"),
		"--state", filepath.Join(tmpDir, ".sqldoc", "state.db"),
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("build command error = %v\noutput: %s", err, buf.String())
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "_site", "index.html")); err != nil {
		t.Errorf("build should produce index.html: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "_site", "manifest.json")); err != nil {
		t.Errorf("build should produce manifest.json: %v", err)
	}
}
