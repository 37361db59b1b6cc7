package specialist

import (
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	promptx "github.com/tanpawarit/career-mentor-ai/agent/prompt"
	toolx "github.com/tanpawarit/career-mentor-ai/agent/tool"
)

func triage(handoffs ...string) Specialist {
	return Specialist{Name: "Triage", Instructions: "route", Handoffs: handoffs}
}

func leaf(name string) Specialist {
	return Specialist{Name: name, Instructions: "answer " + name, Description: name + " questions."}
}

func TestNewSetValid(t *testing.T) {
	t.Parallel()

	set, err := NewSet("Triage", triage("Skill", "Job"), leaf("Skill"), leaf("Job"))
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}
	if set.Entry().Name != "Triage" {
		t.Fatalf("unexpected entry: %s", set.Entry().Name)
	}
	if !set.CanHandoff("Triage", "Skill") {
		t.Fatal("Triage must be able to hand off to Skill")
	}
	if set.CanHandoff("Skill", "Job") {
		t.Fatal("Skill must not hand off")
	}
	if set.CanHandoff("Triage", "Ghost") {
		t.Fatal("unknown target must not be a handoff")
	}

	specs := set.HandoffSpecs("Triage")
	if len(specs) != 2 || specs[0].Target != "Skill" || specs[0].Description != "Skill questions." {
		t.Fatalf("unexpected handoff specs: %#v", specs)
	}
	if got := set.HandoffSpecs("Job"); len(got) != 0 {
		t.Fatalf("leaf must have no handoff specs: %#v", got)
	}
}

func TestNewSetRejectsInvalidGraphs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		entry string
		specs []Specialist
		want  error
	}{
		{"missing entry", "Nobody", []Specialist{leaf("Skill")}, contractx.ErrInvalidGraph},
		{"empty entry", " ", []Specialist{leaf("Skill")}, contractx.ErrInvalidGraph},
		{"unknown target", "Triage", []Specialist{triage("Ghost")}, contractx.ErrInvalidGraph},
		{"self handoff", "Triage", []Specialist{triage("Triage")}, contractx.ErrInvalidGraph},
		{"duplicate specialist", "Triage", []Specialist{triage(), leaf("Skill"), leaf("Skill")}, contractx.ErrInvalidGraph},
		{"duplicate handoff", "Triage", []Specialist{triage("Skill", "Skill"), leaf("Skill")}, contractx.ErrInvalidGraph},
		{
			"depth two", "Triage",
			[]Specialist{triage("Skill"), {Name: "Skill", Instructions: "x", Handoffs: []string{"Job"}}, leaf("Job")},
			contractx.ErrInvalidGraph,
		},
		{"no instructions", "Triage", []Specialist{{Name: "Triage"}}, contractx.ErrPromptMissing},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewSet(tc.entry, tc.specs...); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewSetCopiesInput(t *testing.T) {
	t.Parallel()

	tools := []string{"a"}
	set, err := NewSet("Triage", Specialist{Name: "Triage", Instructions: "x", Tools: tools})
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}
	tools[0] = "b"
	if !set.Entry().CanUseTool("a") {
		t.Fatal("set must not alias caller slices")
	}
}

func TestLoadDefaultCatalog(t *testing.T) {
	t.Parallel()

	cat, err := LoadCatalogFile("")
	if err != nil {
		t.Fatalf("LoadCatalogFile() error = %v", err)
	}
	reg, err := Build(cat, promptx.LoadPromptSet())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	entry := reg.Set.Entry()
	if entry.Name != "CareerMentorTriageAgent" {
		t.Fatalf("unexpected entry: %s", entry.Name)
	}
	if !reg.Set.CanHandoff(entry.Name, "SkillAgent") || !reg.Set.CanHandoff(entry.Name, "JobAgent") {
		t.Fatalf("entry handoffs = %v", entry.Handoffs)
	}
	skill, ok := reg.Set.Get("SkillAgent")
	if !ok || !skill.CanUseTool(toolx.ToolCareerRoadmap) {
		t.Fatalf("SkillAgent must use %s", toolx.ToolCareerRoadmap)
	}
	if !strings.Contains(skill.Instructions, "get_career_roadmap") {
		t.Fatalf("SkillAgent instructions not loaded: %q", skill.Instructions)
	}
	if !reg.Tools.Has(toolx.ToolCareerRoadmap) {
		t.Fatal("roadmap tool not registered")
	}
	if got := strings.Join(reg.Roadmaps.Fields(), ","); got != "software engineering,data science,medicine,marketing,finance" {
		t.Fatalf("unexpected roadmap fields: %s", got)
	}
}

func TestLoadCatalogInlineInstructions(t *testing.T) {
	t.Parallel()

	cat, err := LoadCatalog([]byte(`
entry: Front
specialists:
  - name: Front
    instructions: Say hello.
    handoffs: [Back]
  - name: Back
    instructions: Do the work.
    tools: [lookup_missing]
    keywords: [" Work "]
`))
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if cat.Specialists[1].Keywords[0] != "work" {
		t.Fatalf("keywords not normalized: %v", cat.Specialists[1].Keywords)
	}

	reg, err := Build(cat, promptx.PromptSet{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if reg.Roadmaps != nil {
		t.Fatal("no roadmaps declared, table must be nil")
	}
	if reg.Tools.Has("lookup_missing") {
		t.Fatal("unknown tool must stay unregistered")
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		yaml string
		want error
	}{
		"empty":         {``, contractx.ErrValidation},
		"unknown field": {"entry: A\nbogus: 1\n", contractx.ErrValidation},
		"no entry":      {"specialists:\n  - name: A\n    prompt: triage\n", contractx.ErrValidation},
		"no prompt":     {"entry: A\nspecialists:\n  - name: A\n", contractx.ErrPromptMissing},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := LoadCatalog([]byte(tc.yaml)); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBuildUnknownPrompt(t *testing.T) {
	t.Parallel()

	cat, err := LoadCatalog([]byte("entry: A\nspecialists:\n  - name: A\n    prompt: nope\n"))
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if _, err := Build(cat, promptx.LoadPromptSet()); !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
}
