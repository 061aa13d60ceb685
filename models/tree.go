package models

import "sort"

// CategoryNode is a read-time view of a category with its children linked.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// BuildCategoryTree links a flat category list into a forest. A node whose
// parent is missing from the input (inactive, deleted) is promoted to a
// root rather than dropped. Siblings are ordered by sort order, then name.
func BuildCategoryTree(categories []Category) []*CategoryNode {
	nodes := make(map[uint]*CategoryNode, len(categories))
	for i := range categories {
		nodes[categories[i].ID] = &CategoryNode{
			Category: categories[i],
			Children: []*CategoryNode{},
		}
	}

	roots := []*CategoryNode{}
	for i := range categories {
		node := nodes[categories[i].ID]
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*CategoryNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
	for _, node := range nodes {
		sortNodes(node.Children)
	}
}
