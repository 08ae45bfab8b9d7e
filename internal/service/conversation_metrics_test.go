package service

import (
	"testing"
)

func TestComputeConversationMetricsEmpty(t *testing.T) {
	m := ComputeConversationMetrics(nil)
	if m.PositiveJokeResponse || m.CasualLanguageDetected {
		t.Fatalf("expected zero metrics, got %+v", m)
	}
	if m.UserQuestionRatio != 0 || m.AvgMessageLength != 0 {
		t.Fatalf("expected zero ratios, got %+v", m)
	}
}

func TestComputeConversationMetricsSignals(t *testing.T) {
	m := ComputeConversationMetrics([]string{
		"haha that was so funny!",
		"gonna tell my sister",
		"why is the sky blue?",
		"and why is grass green?",
	})

	if !m.PositiveJokeResponse {
		t.Fatalf("expected joke appreciation")
	}
	if !m.CasualLanguageDetected {
		t.Fatalf("expected casual language")
	}
	if m.UserQuestionRatio != 0.5 {
		t.Fatalf("expected question ratio 0.5, got %f", m.UserQuestionRatio)
	}
	if m.AvgMessageLength <= 0 {
		t.Fatalf("expected positive avg length")
	}
}

func TestComputeConversationMetricsFormalMessages(t *testing.T) {
	m := ComputeConversationMetrics([]string{
		"Thank you very much for the story.",
		"I enjoyed it a lot.",
	})
	if m.PositiveJokeResponse || m.CasualLanguageDetected {
		t.Fatalf("expected no casual signals, got %+v", m)
	}
	if m.UserQuestionRatio != 0 {
		t.Fatalf("expected no questions, got %f", m.UserQuestionRatio)
	}
}
