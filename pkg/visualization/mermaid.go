// Package visualization renders a Definition as a Mermaid flowchart, a
// pure, side-effect-free formatter useful for operators inspecting a
// submitted workflow before it runs. Grounded on the teacher's
// pkg/visualization graph-rendering helper.
package visualization

import (
	"fmt"
	"strings"

	"github.com/flowforge/dagflow/internal/domain"
)

// Mermaid renders def as a "graph TD" Mermaid flowchart: one node per
// workflow node, labeled with its id and type, and one arrow per edge.
func Mermaid(def domain.Definition) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, n := range def.Nodes {
		fmt.Fprintf(&b, "    %s[\"%s (%s)\"]\n", sanitize(n.ID), n.ID, n.Type)
	}
	for _, e := range def.Edges {
		fmt.Fprintf(&b, "    %s --> %s\n", sanitize(e.Source), sanitize(e.Target))
	}
	return b.String()
}

// sanitize makes an arbitrary node id safe as a Mermaid identifier.
func sanitize(id string) string {
	replacer := strings.NewReplacer(" ", "_", "-", "_", ".", "_")
	return replacer.Replace(id)
}
