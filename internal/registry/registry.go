package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/DEX-zha/town-hall-mcp/pkg/mcp"
)

// Category groups related node tools for discovery.
type Category struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Tools       []string `yaml:"tools"`
}

// Registry holds the node tools this server exposes and supports keyword
// search over them.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]mcp.Tool
	order      []string // registration order for stable listing
	summaries  map[string]mcp.ToolSummary
	categories []Category
}

// New creates a registry with the default category layout.
func New() *Registry {
	return &Registry{
		tools:      make(map[string]mcp.Tool),
		summaries:  make(map[string]mcp.ToolSummary),
		categories: defaultCategories(),
	}
}

// LoadTools registers the server's node tools.
func (r *Registry) LoadTools(tools []mcp.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tools {
		if _, ok := r.tools[t.Name]; !ok {
			r.order = append(r.order, t.Name)
		}
		r.tools[t.Name] = t
		r.summaries[t.Name] = mcp.ToolSummary{
			Name:        t.Name,
			Description: truncateDescription(t.Description, 100),
			Category:    r.findCategory(t.Name),
		}
	}
}

// List returns all tools in registration order.
func (r *Registry) List() []mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// GetTool returns a tool by name.
func (r *Registry) GetTool(name string) (mcp.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Search finds tools matching the query, optionally filtered by category.
func (r *Registry) Search(query string, category string, limit int) []mcp.ToolSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	query = strings.ToLower(strings.TrimSpace(query))

	names := r.order
	if category != "" {
		names = nil
		for _, cat := range r.categories {
			if strings.EqualFold(cat.Name, category) {
				names = cat.Tools
				break
			}
		}
	}

	type scored struct {
		summary mcp.ToolSummary
		score   int
	}
	var ranked []scored

	for _, name := range names {
		summary, ok := r.summaries[name]
		if !ok {
			continue
		}

		score := 0
		nameLower := strings.ToLower(name)
		descLower := strings.ToLower(summary.Description)

		if strings.Contains(nameLower, query) {
			score += 100
		}
		if fuzzy.Match(query, nameLower) {
			score += 50
		}
		if strings.Contains(descLower, query) {
			score += 30
		}
		for _, cat := range r.categories {
			if summary.Category != cat.Name {
				continue
			}
			for _, kw := range cat.Keywords {
				if strings.Contains(query, strings.ToLower(kw)) {
					score += 20
				}
			}
		}

		if score > 0 {
			ranked = append(ranked, scored{summary, score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]mcp.ToolSummary, 0, limit)
	for i := 0; i < len(ranked) && i < limit; i++ {
		out = append(out, ranked[i].summary)
	}
	return out
}

// Categories returns all configured categories.
func (r *Registry) Categories() []Category {
	return r.categories
}

// ToolCount returns the number of registered tools.
func (r *Registry) ToolCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

func (r *Registry) findCategory(toolName string) string {
	for _, cat := range r.categories {
		for _, t := range cat.Tools {
			if t == toolName {
				return cat.Name
			}
		}
	}
	return "other"
}

func truncateDescription(desc string, maxLen int) string {
	if len(desc) <= maxLen {
		return desc
	}
	return desc[:maxLen-3] + "..."
}

func defaultCategories() []Category {
	return []Category{
		{
			Name:        "location",
			Description: "Submit location listings to Project Buddy",
			Keywords:    []string{"location", "address", "price", "surface", "listing"},
			Tools:       []string{"townhall_submit_location", "townhall_submit", "townhall_submit_report"},
		},
		{
			Name:        "project-maturity",
			Description: "Submit project-maturity assessments to Project Buddy",
			Keywords:    []string{"maturity", "assessment", "percentage", "points", "level"},
			Tools:       []string{"townhall_submit_maturity", "townhall_submit", "townhall_submit_report"},
		},
		{
			Name:        "discovery",
			Description: "Discover and describe the available node tools",
			Keywords:    []string{"search", "describe", "tools", "schema"},
			Tools:       []string{"search_tools", "describe_tool"},
		},
	}
}
