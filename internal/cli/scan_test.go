package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/sourcemap"
)

const projectMap = `{
  "name": "Game", "className": "DataModel",
  "children": [
    {"name": "ReplicatedStorage", "className": "ReplicatedStorage", "children": [
      {"name": "Util", "className": "ModuleScript", "filePaths": ["src/Util.lua"]},
      {"name": "Net", "className": "ModuleScript", "filePaths": ["src/Net.lua"]}
    ]},
    {"name": "ServerScriptService", "className": "ServerScriptService", "children": [
      {"name": "Main", "className": "Script", "filePaths": ["src/Main.server.lua"]}
    ]}
  ]
}`

var projectFiles = map[string]string{
	sourcemap.DefaultFile: projectMap,
	"src/Util.lua":        "return {}",
	"src/Net.lua":         "local Util = require(script.Parent.Util)\nreturn {}",
	"src/Main.server.lua": `local RS = game:GetService("ReplicatedStorage")
local Net = require(RS.Net)
local Util = require(RS.Util)
local Gone = require(RS.Gone)
`,
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range projectFiles {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRunScan(t *testing.T) {
	c, buf := testCLI(t)
	dir := writeProject(t)
	output := filepath.Join(t.TempDir(), "require-map.json")

	if err := c.runScan(context.Background(), dir, sourcemap.DefaultFile, output); err != nil {
		t.Fatalf("runScan: %v", err)
	}
	doc, err := graph.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 3 || len(doc.Links) != 3 {
		t.Errorf("got %d nodes, %d links, want 3 and 3", len(doc.Nodes), len(doc.Links))
	}
	if !strings.Contains(buf.String(), "1 requires could not be resolved") {
		t.Errorf("unresolved require not reported:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "reveal serve "+output) {
		t.Errorf("next step missing:\n%s", buf.String())
	}
}

func TestRunScanMissingSourcemap(t *testing.T) {
	c, _ := testCLI(t)
	err := c.runScan(context.Background(), t.TempDir(), sourcemap.DefaultFile, filepath.Join(t.TempDir(), "x.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRunTree(t *testing.T) {
	dir := writeProject(t)

	t.Run("one script", func(t *testing.T) {
		c, buf := testCLI(t)
		if err := c.runTree(context.Background(), dir, sourcemap.DefaultFile, "ServerScriptService.Main", 0); err != nil {
			t.Fatalf("runTree: %v", err)
		}
		for _, want := range []string{"ServerScriptService.Main", "ReplicatedStorage.Net", "ReplicatedStorage.Util"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("tree missing %q:\n%s", want, buf.String())
			}
		}
	})

	t.Run("by file", func(t *testing.T) {
		c, buf := testCLI(t)
		if err := c.runTree(context.Background(), dir, sourcemap.DefaultFile, "src/Net.lua", 1); err != nil {
			t.Fatalf("runTree: %v", err)
		}
		if strings.Contains(buf.String(), "ReplicatedStorage.Util") {
			t.Errorf("depth 1 should print only the root:\n%s", buf.String())
		}
	})

	t.Run("top level", func(t *testing.T) {
		c, buf := testCLI(t)
		if err := c.runTree(context.Background(), dir, sourcemap.DefaultFile, "", 0); err != nil {
			t.Fatalf("runTree: %v", err)
		}
		if !strings.HasPrefix(strings.TrimSpace(buf.String()), "ServerScriptService.Main") {
			t.Errorf("Main is the only script nobody requires:\n%s", buf.String())
		}
	})

	t.Run("unknown script", func(t *testing.T) {
		c, _ := testCLI(t)
		err := c.runTree(context.Background(), dir, sourcemap.DefaultFile, "Nope", 0)
		if !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("error = %v, want NOT_FOUND", err)
		}
	})
}
