package cli

import (
	"bufio"
	"strings"
	"testing"
)

func TestPrompter_PromptString_UsesDefaultOnEmptyInput(t *testing.T) {
	p := NewPrompter(bufio.NewReader(strings.NewReader("\n")))
	got, err := p.PromptString("Name", "fallback")
	if err != nil {
		t.Fatalf("PromptString: %v", err)
	}
	if got != "fallback" {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestPrompter_PromptString_ReturnsTrimmedInput(t *testing.T) {
	p := NewPrompter(bufio.NewReader(strings.NewReader("  windsurf  \n")))
	got, err := p.PromptString("Editor", "")
	if err != nil {
		t.Fatalf("PromptString: %v", err)
	}
	if got != "windsurf" {
		t.Errorf("got %q, want windsurf", got)
	}
}

func TestPrompter_PromptChoice_SingleOptionShortCircuits(t *testing.T) {
	p := NewPrompter(bufio.NewReader(strings.NewReader("")))
	got, err := p.PromptChoice("Pick one", []string{"only"})
	if err != nil {
		t.Fatalf("PromptChoice: %v", err)
	}
	if got != "only" {
		t.Errorf("got %q, want only", got)
	}
}

func TestPrompter_PromptChoice_SelectsByIndex(t *testing.T) {
	p := NewPrompter(bufio.NewReader(strings.NewReader("2\n")))
	got, err := p.PromptChoice("Pick one", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("PromptChoice: %v", err)
	}
	if got != "b" {
		t.Errorf("got %q, want b", got)
	}
}

func TestPrompter_PromptChoice_RejectsOutOfRange(t *testing.T) {
	p := NewPrompter(bufio.NewReader(strings.NewReader("9\n")))
	if _, err := p.PromptChoice("Pick one", []string{"a", "b"}); err == nil {
		t.Error("expected an error for an out-of-range selection")
	}
}

func TestPrompter_PromptYesNo_DefaultsOnEmptyInput(t *testing.T) {
	p := NewPrompter(bufio.NewReader(strings.NewReader("\n")))
	got, err := p.PromptYesNo("Proceed?", true)
	if err != nil {
		t.Fatalf("PromptYesNo: %v", err)
	}
	if !got {
		t.Error("expected default true")
	}
}

func TestPrompter_PromptYesNo_ParsesNo(t *testing.T) {
	p := NewPrompter(bufio.NewReader(strings.NewReader("n\n")))
	got, err := p.PromptYesNo("Proceed?", true)
	if err != nil {
		t.Fatalf("PromptYesNo: %v", err)
	}
	if got {
		t.Error("expected false for explicit n")
	}
}
