package sourcemap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/reveal/pkg/errors"
)

// DefaultFile is the sourcemap file name inside a project directory.
const DefaultFile = "sourcemap.json"

// Script classes whose source is scanned for requires.
const (
	ClassModuleScript = "ModuleScript"
	ClassScript       = "Script"
	ClassLocalScript  = "LocalScript"
)

// packageIndex is the container package managers use for vendored
// dependencies; it is never scanned.
const packageIndex = "_Index"

// Node is one instance of a Rojo sourcemap tree.
type Node struct {
	Name      string   `json:"name"`
	ClassName string   `json:"className"`
	FilePaths []string `json:"filePaths,omitempty"`
	Children  []*Node  `json:"children,omitempty"`

	Parent *Node `json:"-"`
}

// Parse decodes a sourcemap and links every node to its parent.
func Parse(data []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSourcemap, err, "decode sourcemap")
	}
	if root.Name == "" && root.ClassName == "" {
		return nil, errors.New(errors.ErrCodeInvalidSourcemap, "sourcemap has no root instance")
	}
	link(&root)
	return &root, nil
}

// ReadFile reads and parses a sourcemap file.
func ReadFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func link(n *Node) {
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		c.Parent = n
		link(c)
	}
}

// IsScript reports whether n is a script with a Lua source file.
func (n *Node) IsScript() bool {
	switch n.ClassName {
	case ClassModuleScript, ClassScript, ClassLocalScript:
		return n.LuaFile() != ""
	}
	return false
}

// LuaFile returns the first .lua or .luau file path, or "".
func (n *Node) LuaFile() string {
	for _, p := range n.FilePaths {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".lua", ".luau":
			return p
		}
	}
	return ""
}

// Child returns the first child named name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c != nil && c.Name == name {
			return c
		}
	}
	return nil
}

// Path returns the instance names from below the root down to n.
func (n *Node) Path() []string {
	var parts []string
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return parts
}

// ID is the dotted instance path without the root, e.g.
// "ReplicatedStorage.Shared.Util". The root's ID is its name.
func (n *Node) ID() string {
	if n.Parent == nil {
		return n.Name
	}
	return strings.Join(n.Path(), ".")
}

// Service returns the top-level instance n lives under, or nil for the root.
func (n *Node) Service() *Node {
	cur := n
	for cur.Parent != nil && cur.Parent.Parent != nil {
		cur = cur.Parent
	}
	if cur.Parent == nil {
		return nil
	}
	return cur
}

// Walk visits every script in depth-first document order, skipping
// package index containers.
func (n *Node) Walk(fn func(*Node)) {
	if n.Name == packageIndex && !n.IsScript() {
		return
	}
	if n.IsScript() {
		fn(n)
	}
	for _, c := range n.Children {
		if c != nil {
			c.Walk(fn)
		}
	}
}
