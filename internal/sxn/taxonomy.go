package sxn

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// rankMetaKey tags a tree node with its taxonomic rank in the JSON
// artifact; double-underscore keys are skipped by readers.
const rankMetaKey = "__rank__"

// TreeLeaf is one record entry at the bottom of the phylo tree.
type TreeLeaf struct {
	Accession string `json:"accession"`
	Title     string `json:"title"`
	URL       string `json:"ncbi_url"`
}

// TreeNode is one level of the phylo tree: lineage name, species, or
// partial/full band. Terminal protein-type keys map to record lists.
type TreeNode struct {
	Rank     string
	Children map[string]*TreeNode
	Leaves   map[string][]TreeLeaf
}

// Tree is the taxonomy tree built while fetching, rooted at the order.
type Tree struct {
	Root *TreeNode
}

func newTreeNode() *TreeNode {
	return &TreeNode{
		Children: map[string]*TreeNode{},
		Leaves:   map[string][]TreeLeaf{},
	}
}

// NewTree returns an empty phylo tree.
func NewTree() *Tree {
	return &Tree{Root: newTreeNode()}
}

// Add files a leaf under path, the final path element being the terminal
// protein-type key. ranks supplies the rank for any lineage name it knows.
func (t *Tree) Add(path []string, ranks map[string]string, leaf TreeLeaf) {
	if len(path) == 0 {
		return
	}
	node := t.Root
	for _, key := range path[:len(path)-1] {
		child := node.Children[key]
		if child == nil {
			child = newTreeNode()
			node.Children[key] = child
		}
		if child.Rank == "" {
			child.Rank = ranks[key]
		}
		node = child
	}
	last := path[len(path)-1]
	node.Leaves[last] = append(node.Leaves[last], leaf)
}

// Count is the number of records at or below the node.
func (n *TreeNode) Count() int {
	total := 0
	for _, leaves := range n.Leaves {
		total += len(leaves)
	}
	for _, child := range n.Children {
		total += child.Count()
	}
	return total
}

// sortedKeys of a map, for stable artifacts.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON renders the node as a nested object with a __rank__ meta
// entry, matching the phylo_tree.json layout downstream tools read.
func (n *TreeNode) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{}
	if n.Rank != "" {
		out[rankMetaKey] = n.Rank
	}
	for key, child := range n.Children {
		out[key] = child
	}
	for key, leaves := range n.Leaves {
		out[key] = leaves
	}
	return json.Marshal(out)
}

// WriteJSON saves the tree as phylo_tree.json under root.
func (t *Tree) WriteJSON(root string) (string, error) {
	path := filepath.Join(root, treeFileName)
	b, err := json.MarshalIndent(t.Root, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0644)
}

// WriteMarkdown saves a compact indented view of the tree with per-node
// record counts and rank tags.
func (t *Tree) WriteMarkdown(root, order string) (string, error) {
	lines := []string{
		"# Phylogenetic Tree",
		"",
		fmt.Sprintf("- JSON file: `%s`", treeFileName),
		fmt.Sprintf("- Records saved: %d", t.Root.Count()),
		fmt.Sprintf("- Root order: %s", order),
		"",
		"## Tree (node name with record counts and ranks)",
	}
	emitTreeMarkdown(&lines, t.Root, 0)

	path := filepath.Join(root, "phylo_tree.md")
	return path, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// titleCase upper-cases the first letter of each space-separated word,
// for rank display ("superfamily" -> "Superfamily").
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

const treeMaxDepth = 8

func emitTreeMarkdown(lines *[]string, node *TreeNode, depth int) {
	if depth >= treeMaxDepth {
		return
	}
	indent := strings.Repeat("  ", depth)
	for _, key := range sortedKeys(node.Children) {
		child := node.Children[key]
		rankTag := ""
		if child.Rank != "" {
			rankTag = fmt.Sprintf(" [%s]", titleCase(strings.ReplaceAll(child.Rank, "_", " ")))
		}
		*lines = append(*lines, fmt.Sprintf("%s- %s%s (%d)", indent, key, rankTag, child.Count()))
		emitTreeMarkdown(lines, child, depth+1)
	}
	for _, key := range sortedKeys(node.Leaves) {
		*lines = append(*lines, fmt.Sprintf("%s- %s (%d)", indent, key, len(node.Leaves[key])))
	}
}

// BuildTree reconstructs the phylo tree from records already on disk,
// for when the fetch artifacts were deleted or records were merged from
// several crawls.
func BuildTree(records []*Record) *Tree {
	tree := NewTree()
	for _, rec := range records {
		path := append([]string{}, rec.Lineage()...)
		path = append(path, rec.Organism, rec.Band(), rec.Type)
		tree.Add(path, nil, TreeLeaf{
			Accession: rec.Accession,
			Title:     rec.Title,
			URL:       rec.URL,
		})
	}
	return tree
}
