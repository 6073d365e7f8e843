package domain

import (
	"strings"
	"testing"
)

func validStory() *Story {
	return &Story{
		ID:     mustUUID(),
		Title:  "As a user, I want OAuth2 login",
		Status: StoryDraft,
	}
}

func TestStoryValidate(t *testing.T) {
	t.Run("valid story passes", func(t *testing.T) {
		if err := validStory().Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty title rejected", func(t *testing.T) {
		s := validStory()
		s.Title = "   "
		if err := s.Validate(); err == nil {
			t.Fatalf("expected error for blank title")
		}
	})

	t.Run("title at 255 accepted", func(t *testing.T) {
		s := validStory()
		s.Title = strings.Repeat("a", 255)
		if err := s.Validate(); err != nil {
			t.Fatalf("expected 255-char title to be accepted: %v", err)
		}
	})

	t.Run("title at 256 rejected", func(t *testing.T) {
		s := validStory()
		s.Title = strings.Repeat("a", 256)
		if err := s.Validate(); err == nil {
			t.Fatalf("expected 256-char title to be rejected")
		}
	})

	t.Run("story points out of range rejected", func(t *testing.T) {
		s := validStory()
		nine := 9
		s.StoryPoints = &nine
		if err := s.Validate(); err == nil {
			t.Fatalf("expected out-of-range story points to be rejected")
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		s := validStory()
		s.Status = StoryStatus("bogus")
		if err := s.Validate(); err == nil {
			t.Fatalf("expected invalid status to be rejected")
		}
	})
}

func TestStorySameTenant(t *testing.T) {
	org := mustUUID()
	other := mustUUID()

	s := &Story{OrganizationID: &org}
	if !s.SameTenant(&org) {
		t.Fatalf("expected same tenant match")
	}
	if s.SameTenant(&other) {
		t.Fatalf("expected different tenant mismatch")
	}
	if s.SameTenant(nil) {
		t.Fatalf("expected org-scoped story to mismatch nil (personal) context")
	}

	personal := &Story{}
	if !personal.SameTenant(nil) {
		t.Fatalf("expected personal story to match nil context")
	}
	if personal.SameTenant(&org) {
		t.Fatalf("expected personal story to mismatch organization context")
	}
}
