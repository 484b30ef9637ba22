package permission

import "strings"

// PageClass is the coarse, role independent classification of a path.
type PageClass string

const (
	// PagePublic pages are reachable without authentication.
	PagePublic PageClass = "public"
	// PageRequiresLogin pages are reachable by any authenticated role.
	PageRequiresLogin PageClass = "requires-login"
	// PageGated pages are create/edit forms and need an authenticated role.
	PageGated PageClass = "gated"
	// PageOpen pages match no rule and are allowed by default.
	PageOpen PageClass = "open"
)

// NeedsLogin reports whether pages of class c require an authenticated role.
func (c PageClass) NeedsLogin() bool {
	return c == PageRequiresLogin || c == PageGated
}

// Pages holds the path sets used by the page and navigation checks.
type Pages struct {
	// Public pages are reachable without authentication.
	Public []string
	// RequiresLogin pages are reachable by any authenticated role.
	RequiresLogin []string
	// AdminOnly pages are hidden from navigation for every role but admin.
	AdminOnly []string
	// Management pages are hidden from navigation for members.
	Management []string
}

// DefaultPages returns the page sets shipped with the church-web client.
func DefaultPages() Pages {
	return Pages{
		Public:        []string{"/", "/news", "/devotionals", "/institutional", "/calendar", "/prayer-requests"},
		RequiresLogin: []string{"/members", "/families", "/ministries", "/visitors", "/settings", "/chat"},
		AdminOnly:     []string{"/settings"},
		Management:    []string{"/members", "/families", "/ministries", "/visitors"},
	}
}

func (p Pages) clone() Pages {
	return Pages{
		Public:        append([]string(nil), p.Public...),
		RequiresLogin: append([]string(nil), p.RequiresLogin...),
		AdminOnly:     append([]string(nil), p.AdminOnly...),
		Management:    append([]string(nil), p.Management...),
	}
}

// Classify returns the class of path. Rules are tried in order: public pages,
// login pages, then create/edit forms; anything else is open.
func (p Pages) Classify(path string) PageClass {
	switch {
	case matchesPage(p.Public, path):
		return PagePublic
	case matchesPage(p.RequiresLogin, path):
		return PageRequiresLogin
	case strings.Contains(path, "/create") || strings.Contains(path, "/edit"):
		return PageGated
	default:
		return PageOpen
	}
}

// matchesPage reports whether path is one of pages or lies below one of them.
func matchesPage(pages []string, path string) bool {
	for _, page := range pages {
		if path == page || strings.HasPrefix(path, page+"/") {
			return true
		}
	}
	return false
}

func containsPage(pages []string, path string) bool {
	for _, page := range pages {
		if page == path {
			return true
		}
	}
	return false
}
