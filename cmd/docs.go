package cmd

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// https://pmarsceill.github.io/just-the-docs/docs/navigation-structure/
const rootPage = `---
layout: default
title: %s
nav_order: %d
has_children: true
permalink: /
---
`

const childPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
---
`

// pageMeta is for describing the position/info for a command doc page.
type pageMeta struct {
	title    string
	navOrder int
	parent   string
}

// metaMap is a map from the base Markdown file name to its build meta.
var metaMap = map[string]pageMeta{
	"sxn":         {title: "sxn", navOrder: 0},
	"sxn_fetch":   {title: "fetch", navOrder: 0, parent: "sxn"},
	"sxn_analyze": {title: "analyze", navOrder: 1, parent: "sxn"},
	"sxn_tree":    {title: "tree", navOrder: 2, parent: "sxn"},
	"sxn_plot":    {title: "plot", navOrder: 3, parent: "sxn"},
}

// docsCmd generates the Markdown documentation pages. Hidden: it is a
// maintainer task, not part of the analysis workflow.
var docsCmd = &cobra.Command{
	Use:    "docs [directory]",
	Short:  "Generate Markdown documentation for every command",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		dir := "./docs"
		if len(args) > 0 {
			dir = args[0]
		}
		if err := doc.GenMarkdownTreeCustom(RootCmd, dir, filePrepender, linkHandler); err != nil {
			fmt.Println(err.Error())
		}
	},
}

// filePrepender adds YAML headings that are required by the just-the-docs theme
// https://github.com/spf13/cobra/blob/master/doc/md_docs.md
func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))
	m := metaMap[base]

	if m.parent == "" {
		return fmt.Sprintf(rootPage, m.title, m.navOrder)
	}
	return fmt.Sprintf(childPage, m.title, m.parent, m.navOrder)
}

// linkHandler returns the URL to a documentation page.
func linkHandler(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))

	if base == "sxn" {
		return "/"
	}
	return base
}

func init() {
	RootCmd.AddCommand(docsCmd)
}
