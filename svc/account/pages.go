package account

// pageDepthOrder lists the planner funnel in navigation order. A user's
// deepest page is the highest index they have ever visited; pages outside
// the funnel never advance it.
var pageDepthOrder = []string{
	"/",
	"/information",
	"/personal-info",
	"/retirement-overview",
	"/income",
	"/costs",
	"/financial-balance",
	"/scenario",
	"/scenario-result",
}

// PageDepth returns the position of a page in the planner funnel, or -1 for
// pages outside it.
func PageDepth(page string) int {
	for i, p := range pageDepthOrder {
		if p == page {
			return i
		}
	}
	return -1
}
