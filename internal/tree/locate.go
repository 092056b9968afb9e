package tree

import "github.com/mj1618/uia-provider/internal/platform"

// FindByIdentifier returns the first node, in document order, whose bounds
// short string equals id. The search borrows root and releases every node it
// visits; the returned node is a new reference the caller must release.
// Identifiers are not unique: the first of several equal-bounds nodes wins.
func FindByIdentifier(root platform.Node, id string) platform.Node {
	return find(root, func(n platform.Node) bool {
		return n.BoundsInScreen().ShortString() == id
	})
}

// FindFirstEditable returns node itself if it is editable, otherwise the
// first editable descendant in pre-order. Ownership follows FindByIdentifier.
func FindFirstEditable(node platform.Node) platform.Node {
	return find(node, platform.Node.IsEditable)
}

func find(n platform.Node, match func(platform.Node) bool) platform.Node {
	if n == nil {
		return nil
	}
	if match(n) {
		return n.Obtain()
	}
	for i := 0; i < n.ChildCount(); i++ {
		if found := findInChild(n, i, match); found != nil {
			return found
		}
	}
	return nil
}

func findInChild(parent platform.Node, i int, match func(platform.Node) bool) platform.Node {
	child := parent.Child(i)
	if child == nil {
		return nil
	}
	defer child.Release()
	return find(child, match)
}
