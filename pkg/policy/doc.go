// Package policy provides church-web permission policy parsing and loading.
//
// A policy document is the YAML form of the permission table and the page
// sets. Parsing produces an immutable permission.Table and permission.Pages;
// building a document produces a permission.Service that answers decisions.
//
// # Policy Format
//
//	roles:
//	  member:
//	    news: [read]
//	    chat: [create, read, update]
//	    members: []
//	  admin:
//	    news: ["*"]
//	pages:
//	  public: [/, /news]
//	  requires_login: [/members]
//	navigation:
//	  admin_only: [/settings]
//	  management: [/members, /families]
//
// Role names are matched case-insensitively and must be one of member,
// leader, pastor or admin. Actions are create, read, update and delete; "*"
// grants all four and an empty list grants nothing. Any list omitted under
// pages or navigation falls back to the built-in church-web set.
//
// # Loading Policies
//
//	doc, err := policy.Load("/etc/church/policy.yml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc, err := doc.Build(permission.WithDiagnostics(diag))
//
// # Reloading
//
// A Holder publishes the current Snapshot. A Watcher follows the policy file
// and stores a freshly built service in the Holder whenever the file changes.
// Documents that fail to parse leave the previous service in place.
package policy
