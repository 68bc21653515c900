package model

import (
	"testing"
)

func TestNewFact_Provenance(t *testing.T) {
	f, err := NewFact("Acme raised $5M", FactFunding, SourceNews, "news-feeds", 0.7)
	if err != nil {
		t.Fatalf("expected fact, got error: %v", err)
	}
	if f.ID == "" {
		t.Error("expected a generated ID")
	}
	if f.SourceName == "" || f.SourceType == "" {
		t.Error("fact is missing provenance")
	}
	if f.CapturedAt.IsZero() {
		t.Error("expected CapturedAt to be stamped")
	}
	if f.VerificationCount != 1 {
		t.Errorf("expected verification count 1, got %d", f.VerificationCount)
	}
	if f.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %f", f.Confidence)
	}
}

func TestNewFact_RejectsMissingSource(t *testing.T) {
	if _, err := NewFact("claim", FactCompanyInfo, "", "name", 0.5); err == nil {
		t.Error("expected error for empty source type")
	}
	if _, err := NewFact("claim", FactCompanyInfo, SourceNews, "", 0.5); err == nil {
		t.Error("expected error for empty source name")
	}
	if _, err := NewFact("", FactCompanyInfo, SourceNews, "name", 0.5); err == nil {
		t.Error("expected error for empty claim")
	}
}

func TestClampConfidence(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.3, 1},
	}
	for _, c := range cases {
		if got := ClampConfidence(c.in); got != c.want {
			t.Errorf("ClampConfidence(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}
