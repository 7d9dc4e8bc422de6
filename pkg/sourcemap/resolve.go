package sourcemap

import (
	"fmt"
)

// Resolve follows a require path from the requiring script. The root
// identifier "script" is the script itself, "game" is the sourcemap root
// and "workspace" is the root's Workspace child; "Parent" climbs one level
// and any other name descends to the child of that name. The target must
// be a ModuleScript.
func Resolve(root, script *Node, path []string) (*Node, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty require path")
	}
	var cur *Node
	switch path[0] {
	case "script":
		cur = script
	case "game":
		cur = root
	case "workspace":
		cur = root.Child("Workspace")
		if cur == nil {
			return nil, fmt.Errorf("no Workspace under %s", root.Name)
		}
	default:
		return nil, fmt.Errorf("unknown root %q", path[0])
	}

	for _, name := range path[1:] {
		if name == "Parent" {
			if cur.Parent == nil {
				return nil, fmt.Errorf("%s has no parent", cur.Name)
			}
			cur = cur.Parent
			continue
		}
		next := cur.Child(name)
		if next == nil {
			return nil, fmt.Errorf("%s has no child %q", describe(cur), name)
		}
		cur = next
	}

	if cur.ClassName != ClassModuleScript {
		return nil, fmt.Errorf("%s is a %s, not a ModuleScript", describe(cur), cur.ClassName)
	}
	if cur.LuaFile() == "" {
		return nil, fmt.Errorf("%s has no source file", describe(cur))
	}
	return cur, nil
}

func describe(n *Node) string {
	if n.Parent == nil {
		return n.Name
	}
	return n.ID()
}
