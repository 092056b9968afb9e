package model

// FlatNode is a hierarchy node with a path breadcrumb instead of children.
type FlatNode struct {
	Index       int    `yaml:"i"                      json:"i"`
	Depth       int    `yaml:"depth"                  json:"depth"`
	Class       string `yaml:"class"                  json:"class"`
	Package     string `yaml:"package,omitempty"      json:"package,omitempty"`
	Text        string `yaml:"text,omitempty"         json:"text,omitempty"`
	ContentDesc string `yaml:"content-desc,omitempty" json:"contentDesc,omitempty"`
	ResourceID  string `yaml:"resource-id,omitempty"  json:"resourceId,omitempty"`
	Bounds      string `yaml:"bounds"                 json:"bounds"`
	Clickable   bool   `yaml:"clickable,omitempty"    json:"clickable,omitempty"`
	Focused     bool   `yaml:"focused,omitempty"      json:"focused,omitempty"`
	Path        string `yaml:"path,omitempty"         json:"path,omitempty"`
}

// FlattenHierarchy converts a node tree into a pre-order list. Each entry
// gets a path of short class names joined with " > ".
func FlattenHierarchy(root *Node) []FlatNode {
	if root == nil {
		return nil
	}
	var result []FlatNode
	flattenRecursive(root, "", 0, &result)
	return result
}

func flattenRecursive(n *Node, parentPath string, depth int, result *[]FlatNode) {
	currentPath := ShortClassName(n.Class)
	if parentPath != "" {
		currentPath = parentPath + " > " + currentPath
	}

	*result = append(*result, FlatNode{
		Index:       len(*result),
		Depth:       depth,
		Class:       n.Class,
		Package:     n.Package,
		Text:        n.Text,
		ContentDesc: n.ContentDesc,
		ResourceID:  n.ResourceID,
		Bounds:      n.Bounds,
		Clickable:   n.Clickable,
		Focused:     n.Focused,
		Path:        currentPath,
	})

	for i := range n.Children {
		flattenRecursive(&n.Children[i], currentPath, depth+1, result)
	}
}

// ShortClassName strips the package qualifier from a class name:
// "android.widget.EditText" becomes "EditText".
func ShortClassName(class string) string {
	for i := len(class) - 1; i >= 0; i-- {
		if class[i] == '.' {
			return class[i+1:]
		}
	}
	return class
}
