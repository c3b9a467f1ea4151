package server

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Live clients address nodes by their child-index path from the mount
// container ("0.2.1"). Paths stay valid across patches as long as the
// client's view of the tree matches the server's, which the patch stream
// guarantees.

// nodePath returns the index path from root to n, or false when n is not
// in root's subtree.
func nodePath(root, n *html.Node) (string, bool) {
	if n == root {
		return "", true
	}
	var idx []string
	for cur := n; cur != root; cur = cur.Parent {
		if cur.Parent == nil {
			return "", false
		}
		i := 0
		for sib := cur.Parent.FirstChild; sib != cur; sib = sib.NextSibling {
			i++
		}
		idx = append(idx, strconv.Itoa(i))
	}
	for l, r := 0, len(idx)-1; l < r; l, r = l+1, r-1 {
		idx[l], idx[r] = idx[r], idx[l]
	}
	return strings.Join(idx, "."), true
}

// resolvePath walks an index path from root. Returns nil for malformed or
// out-of-range paths.
func resolvePath(root *html.Node, path string) *html.Node {
	if path == "" {
		return root
	}
	cur := root
	for _, part := range strings.Split(path, ".") {
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 {
			return nil
		}
		child := cur.FirstChild
		for ; child != nil && i > 0; child = child.NextSibling {
			i--
		}
		if child == nil {
			return nil
		}
		cur = child
	}
	return cur
}
