package permission

// NavItem is a link rendered by the navigation chrome.
type NavItem struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// NavDecision is what the chrome should do when a link is followed.
type NavDecision string

const (
	// NavigateAllowed lets the navigation complete.
	NavigateAllowed NavDecision = "navigate"
	// NavigateLogin cancels the navigation and starts the login flow.
	NavigateLogin NavDecision = "login"
)

// DefaultNavigation returns the sidebar links of the church-web client.
func DefaultNavigation() []NavItem {
	return []NavItem{
		{Name: "Início", Href: "/"},
		{Name: "Notícias", Href: "/news"},
		{Name: "Devocionais", Href: "/devotionals"},
		{Name: "Calendário", Href: "/calendar"},
		{Name: "Pedidos de Oração", Href: "/prayer-requests"},
		{Name: "Institucional", Href: "/institutional"},
		{Name: "Ministérios", Href: "/ministries"},
		{Name: "Famílias", Href: "/families"},
		{Name: "Visitantes", Href: "/visitors"},
		{Name: "Chat", Href: "/chat"},
		{Name: "Configurações", Href: "/settings"},
		{Name: "Membros", Href: "/members"},
	}
}

// FilterNavigation returns the items role should see, keeping their order.
func (s *Service) FilterNavigation(role string, items []NavItem) []NavItem {
	visible := make([]NavItem, 0, len(items))
	for _, item := range items {
		if s.ShouldShowInNavigation(role, item.Href) {
			visible = append(visible, item)
		}
	}
	return visible
}

// NavigationTarget decides what following a link to href does for role.
func (s *Service) NavigationTarget(role, href string) NavDecision {
	if s.CanAccessPage(role, href) {
		return NavigateAllowed
	}
	return NavigateLogin
}
