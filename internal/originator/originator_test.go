package originator

import (
	"testing"

	"github.com/arctek/handoff/contract"
	"github.com/arctek/handoff/validate"
)

func TestGithubOriginatorSynthesizesValidContract(t *testing.T) {
	c, err := GithubOriginator{}.Build(Issue{Number: 123, Title: "Add widget", Body: "as a user...", Priority: "high"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.StoryId != "STORY-GH-123" {
		t.Fatalf("expected STORY-GH-123, got %s", c.StoryId)
	}
	if r := validate.All(c); !r.OK {
		t.Fatalf("expected synthesized contract to validate, got %v", r.Errors)
	}
}

func TestSystemOriginatorSynthesizesValidContract(t *testing.T) {
	c, err := SystemOriginator{}.Build(SystemTrigger{Sequence: 7, Reason: "scheduled re-review"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.StoryId != "STORY-SYS-7" {
		t.Fatalf("expected STORY-SYS-7, got %s", c.StoryId)
	}
	if c.SourceAgent != contract.AgentSystem {
		t.Fatalf("expected sourceAgent system, got %s", c.SourceAgent)
	}
}
