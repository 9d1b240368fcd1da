// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
)

func newHelpTestRoot() *cobra.Command {
	rootCmd := NewRootCommand()

	callCmd := &cobra.Command{
		Use:         "call <tool>",
		Short:       "Call one tool",
		Example:     "  blockza-mcp call list_events limit=3",
		Annotations: map[string]string{"group": "mcp"},
		RunE:        func(*cobra.Command, []string) error { return nil },
	}
	callCmd.Flags().String("jq", "", "jq expression")
	callCmd.Flags().String("tool-set", "", "required flag")
	_ = callCmd.MarkFlagRequired("tool-set")
	rootCmd.AddCommand(callCmd)

	rootCmd.AddCommand(&cobra.Command{Use: "secret", Hidden: true, Run: func(*cobra.Command, []string) {}})
	rootCmd.SetHelpCommand(NewHelpCommand(rootCmd))
	return rootCmd
}

func TestHelpCommand_AllJSON(t *testing.T) {
	rootCmd := newHelpTestRoot()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"help", "--json"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("help failed: %v", err)
	}

	var resp HelpResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if !resp.Success || resp.Command != "help" || resp.Target != nil {
		t.Errorf("unexpected envelope: %+v", resp.JSONResponse)
	}

	names := map[string]bool{}
	for _, c := range resp.Commands {
		names[c.Name] = true
	}
	if !names["call"] {
		t.Errorf("call missing from %v", names)
	}
	if names["secret"] {
		t.Error("hidden command listed")
	}

	globals := map[string]bool{}
	for _, f := range resp.GlobalFlags {
		globals[f.Name] = true
	}
	for _, want := range []string{"verbose", "quiet", "json", "config"} {
		if !globals[want] {
			t.Errorf("global flag %s missing", want)
		}
	}
}

func TestHelpCommand_OneJSON(t *testing.T) {
	rootCmd := newHelpTestRoot()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"help", "call", "--json"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("help failed: %v", err)
	}

	var resp HelpResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if resp.Command != "help call" {
		t.Errorf("command = %q, want %q", resp.Command, "help call")
	}
	if resp.Target == nil {
		t.Fatal("command metadata missing")
	}
	if resp.Target.Name != "call" || resp.Target.Group != "mcp" {
		t.Errorf("unexpected metadata: %+v", resp.Target)
	}

	flags := map[string]FlagMetadata{}
	for _, f := range resp.Target.Flags {
		flags[f.Name] = f
	}
	if _, ok := flags["jq"]; !ok {
		t.Error("jq flag missing")
	}
	if !flags["tool-set"].Required {
		t.Error("required flag not marked required")
	}
	if flags["jq"].Required {
		t.Error("optional flag marked required")
	}
}

func TestHelpCommand_Unknown(t *testing.T) {
	rootCmd := newHelpTestRoot()
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"help", "nope", "--json"})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error for unknown command")
	}
}
