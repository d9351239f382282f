package registry

import (
	"encoding/json"
	"testing"

	"github.com/DEX-zha/town-hall-mcp/pkg/mcp"
)

func sampleTools() []mcp.Tool {
	schema := json.RawMessage(`{"type":"object"}`)
	return []mcp.Tool{
		{Name: "townhall_submit_location", Description: "Submit a location listing to Project Buddy", InputSchema: schema},
		{Name: "townhall_submit_maturity", Description: "Submit a project-maturity assessment to Project Buddy", InputSchema: schema},
		{Name: "townhall_submit", Description: "Submit a location or maturity payload, inferring the action", InputSchema: schema},
		{Name: "townhall_submit_report", Description: "Submit and return a human-readable report", InputSchema: schema},
		{Name: "search_tools", Description: "Search the available node tools", InputSchema: schema},
		{Name: "describe_tool", Description: "Describe a node tool and its input schema", InputSchema: schema},
	}
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	r := New()
	r.LoadTools(sampleTools())

	got := r.List()
	if len(got) != 6 {
		t.Fatalf("expected 6 tools, got %d", len(got))
	}
	want := []string{
		"townhall_submit_location",
		"townhall_submit_maturity",
		"townhall_submit",
		"townhall_submit_report",
		"search_tools",
		"describe_tool",
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, got[i].Name)
		}
	}
}

func TestLoadToolsIsIdempotent(t *testing.T) {
	r := New()
	r.LoadTools(sampleTools())
	r.LoadTools(sampleTools())

	if n := r.ToolCount(); n != 6 {
		t.Fatalf("expected 6 tools after reload, got %d", n)
	}
	if n := len(r.List()); n != 6 {
		t.Fatalf("expected 6 listed tools after reload, got %d", n)
	}
}

func TestGetTool(t *testing.T) {
	r := New()
	r.LoadTools(sampleTools())

	tool, ok := r.GetTool("townhall_submit_maturity")
	if !ok {
		t.Fatal("expected tool to be found")
	}
	if tool.Name != "townhall_submit_maturity" {
		t.Fatalf("unexpected tool: %q", tool.Name)
	}

	if _, ok := r.GetTool("nonexistent"); ok {
		t.Fatal("expected lookup miss")
	}
}

func TestSearchFindsSubmitByLocationQuery(t *testing.T) {
	r := New()
	r.LoadTools(sampleTools())

	results := r.Search("location", "", 10)
	if len(results) == 0 {
		t.Fatal("expected results for 'location'")
	}
	if results[0].Name != "townhall_submit_location" {
		t.Fatalf("expected townhall_submit_location ranked first, got %q", results[0].Name)
	}

	found := false
	for _, s := range results {
		if s.Name == "townhall_submit" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected townhall_submit in results for 'location'")
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	r := New()
	r.LoadTools(sampleTools())

	results := r.Search("tools", "discovery", 10)
	if len(results) == 0 {
		t.Fatal("expected results in discovery category")
	}
	for _, s := range results {
		if s.Category != "discovery" {
			t.Fatalf("expected only discovery tools, got %q in %q", s.Name, s.Category)
		}
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	r := New()
	r.LoadTools(sampleTools())

	results := r.Search("townhall", "", 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestSearchNoMatches(t *testing.T) {
	r := New()
	r.LoadTools(sampleTools())

	if results := r.Search("zzzzqqqq", "", 10); len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestSummaryCategories(t *testing.T) {
	r := New()
	r.LoadTools(sampleTools())

	results := r.Search("describe", "", 10)
	if len(results) == 0 {
		t.Fatal("expected results for 'describe'")
	}
	if results[0].Name != "describe_tool" {
		t.Fatalf("expected describe_tool first, got %q", results[0].Name)
	}
	if results[0].Category != "discovery" {
		t.Fatalf("expected discovery category, got %q", results[0].Category)
	}
}
