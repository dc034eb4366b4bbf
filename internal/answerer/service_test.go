package answerer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

const testEmail = "help@example.com"

type fakeLLM struct {
	answer string
	err    error
	called bool
}

func (f *fakeLLM) Answer(_ context.Context, _ string, _ []string, _ []models.Message) (string, error) {
	f.called = true
	return f.answer, f.err
}

func TestStaticResponder(t *testing.T) {
	r := NewStaticResponder(testEmail)

	tests := []struct {
		query    string
		wantOK   bool
		contains string
	}{
		{"How can I contact you?", true, testEmail},
		{"what is your CONTACT INFORMATION", true, testEmail},
		{"who are you?", true, "IT staffing"},
		{"What do you do exactly", true, "workforce solutions"},
		{"tell me about your pricing", false, ""},
	}
	for _, tt := range tests {
		answer, ok := r.Respond(tt.query, nil)
		if ok != tt.wantOK {
			t.Errorf("Respond(%q) ok = %v, want %v", tt.query, ok, tt.wantOK)
			continue
		}
		if ok && !strings.Contains(answer, tt.contains) {
			t.Errorf("Respond(%q) = %q, missing %q", tt.query, answer, tt.contains)
		}
	}
}

func TestKnowledgeGapResponder(t *testing.T) {
	r := NewKnowledgeGapResponder(testEmail)

	answer, ok := r.Respond("anything", nil)
	if !ok {
		t.Fatal("empty context should trigger the gap responder")
	}
	if !strings.Contains(answer, testEmail) {
		t.Errorf("gap answer missing contact email: %q", answer)
	}

	if _, ok := r.Respond("anything", []string{"Source: a\nContent: b"}); ok {
		t.Error("gap responder fired despite having context")
	}
}

func TestService_StaticBeforeLLM(t *testing.T) {
	llm := &fakeLLM{answer: "model answer"}
	s := NewService(llm, testEmail, zap.NewNop())

	answer, err := s.Answer(context.Background(), "who are you", []string{"some context"}, nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if llm.called {
		t.Error("model was called for a static query")
	}
	if !strings.Contains(answer, "IT staffing") {
		t.Errorf("got %q", answer)
	}
}

func TestService_GapBeforeLLM(t *testing.T) {
	llm := &fakeLLM{answer: "model answer"}
	s := NewService(llm, testEmail, zap.NewNop())

	answer, err := s.Answer(context.Background(), "what certifications do you hold", nil, nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if llm.called {
		t.Error("model was called with empty context")
	}
	if !strings.Contains(answer, "knowledge base") {
		t.Errorf("got %q", answer)
	}
}

func TestService_LLMAnswer(t *testing.T) {
	llm := &fakeLLM{answer: "grounded reply"}
	s := NewService(llm, testEmail, zap.NewNop())

	answer, err := s.Answer(context.Background(), "what services do you offer", []string{"Source: s\nContent: c"}, nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != "grounded reply" {
		t.Errorf("got %q", answer)
	}
}

func TestService_LLMErrorDegrades(t *testing.T) {
	llm := &fakeLLM{err: errors.New("quota exceeded")}
	s := NewService(llm, testEmail, zap.NewNop())

	answer, err := s.Answer(context.Background(), "what services do you offer", []string{"ctx"}, nil)
	if err != nil {
		t.Fatalf("Answer should not propagate model errors, got %v", err)
	}
	if !strings.Contains(answer, "technical issue") {
		t.Errorf("got %q", answer)
	}
}

func TestService_NilLLM(t *testing.T) {
	s := NewService(nil, testEmail, zap.NewNop())
	answer, err := s.Answer(context.Background(), "what services do you offer", []string{"ctx"}, nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !strings.Contains(answer, "technical issue") {
		t.Errorf("got %q", answer)
	}
}
