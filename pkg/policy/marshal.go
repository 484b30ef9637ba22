package policy

import (
	"gopkg.in/yaml.v3"

	"github.com/miguelmarques1/church-web/pkg/permission"
)

// Marshal renders table and pages as a policy document. Roles appear in
// enum order, resources sorted, and action lists in flow style, so parsing
// the output rebuilds an equal table.
func Marshal(table permission.Table, pages permission.Pages) ([]byte, error) {
	roles := mappingNode()
	for _, role := range table.Roles() {
		resources := mappingNode()
		for _, resource := range table.Resources(role) {
			p, _ := table.Lookup(role, resource)
			actions := make([]string, 0, 4)
			for _, a := range p.Actions() {
				actions = append(actions, a.String())
			}
			appendPair(resources, resource, flowSequence(actions))
		}
		appendPair(roles, role.String(), resources)
	}

	pagesNode := mappingNode()
	appendPair(pagesNode, "public", flowSequence(pages.Public))
	appendPair(pagesNode, "requires_login", flowSequence(pages.RequiresLogin))

	navNode := mappingNode()
	appendPair(navNode, "admin_only", flowSequence(pages.AdminOnly))
	appendPair(navNode, "management", flowSequence(pages.Management))

	root := mappingNode()
	appendPair(root, "roles", roles)
	appendPair(root, "pages", pagesNode)
	appendPair(root, "navigation", navNode)

	return yaml.Marshal(root)
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func appendPair(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
}

func flowSequence(items []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, item := range items {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: item})
	}
	return node
}
