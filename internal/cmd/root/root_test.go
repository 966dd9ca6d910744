package root

import (
	"strings"
	"testing"

	cmdutil2 "github.com/schmitthub/clawker/internal/cmdutil"
)

func TestNewCmdRoot(t *testing.T) {
	f := cmdutil2.New("1.0.0", "abc123")
	cmd := NewCmdRoot(f)

	if cmd.Use != "clawker" {
		t.Errorf("expected Use 'clawker', got '%s'", cmd.Use)
	}

	if cmd.Version != "1.0.0" {
		t.Errorf("expected Version '1.0.0', got '%s'", cmd.Version)
	}

	subcommands := cmd.Commands()
	expectedCmds := map[string]bool{
		// Top-level commands
		"config": false,
		"image":  false,
		// Top-level aliases
		"build": false,
		"rmi":   false,
	}

	for _, sub := range subcommands {
		// Use Name() to get just the command name without arguments
		if _, ok := expectedCmds[sub.Name()]; ok {
			expectedCmds[sub.Name()] = true
		}
	}

	for name, found := range expectedCmds {
		if !found {
			t.Errorf("expected subcommand '%s' to be registered", name)
		}
	}
}

func TestNewCmdRoot_GlobalFlags(t *testing.T) {
	f := cmdutil2.New("1.0.0", "abc123")
	cmd := NewCmdRoot(f)

	// Check debug flag exists
	debugFlag := cmd.PersistentFlags().Lookup("debug")
	if debugFlag == nil {
		t.Error("expected --debug flag to exist")
	}

	// Check workdir flag exists
	workdirFlag := cmd.PersistentFlags().Lookup("workdir")
	if workdirFlag == nil {
		t.Error("expected --workdir flag to exist")
	}
}

func TestStateChangingCommandsRequireProject(t *testing.T) {
	// Hardcoded list of commands that MUST require project context.
	// Without this annotation, these commands could modify Docker resources
	// when run outside a project directory, potentially affecting unrelated images.
	// If a command is accidentally removed from protection, this test will fail.
	requiredCommands := [][]string{
		{"image", "build"},
		{"image", "remove"},
		{"image", "prune"},
	}

	f := cmdutil2.New("1.0.0", "abc123")
	root := NewCmdRoot(f)

	for _, path := range requiredCommands {
		name := strings.Join(path, "/")
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find(path)
			if err != nil {
				t.Fatalf("command %s should exist: %v", name, err)
			}
			if cmd == nil {
				t.Fatalf("command %s should not be nil", name)
			}

			if !cmdutil2.CommandRequiresProject(cmd) {
				t.Errorf("command %s should have requiresProject annotation", name)
			}
		})
	}
}

func TestReadOnlyCommandsDoNotRequireProject(t *testing.T) {
	// Read-only commands should NOT require project context.
	// If a read-only command accidentally gets the annotation, users will be
	// unnecessarily prompted when just listing or inspecting resources.
	readOnlyCommands := [][]string{
		{"image", "list"},
		{"image", "inspect"},
	}

	f := cmdutil2.New("1.0.0", "abc123")
	root := NewCmdRoot(f)

	for _, path := range readOnlyCommands {
		name := strings.Join(path, "/")
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find(path)
			if err != nil {
				t.Fatalf("command %s should exist: %v", name, err)
			}
			if cmd == nil {
				t.Fatalf("command %s should not be nil", name)
			}

			if cmdutil2.CommandRequiresProject(cmd) {
				t.Errorf("read-only command %s should NOT have requiresProject annotation", name)
			}
		})
	}
}
