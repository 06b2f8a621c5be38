package client

import (
	"strings"
	"testing"
)

func TestCaptionText(t *testing.T) {
	testCases := []struct {
		name   string
		record CaptionRecord
		want   string
	}{
		{
			name:   "content field preferred",
			record: CaptionRecord{"content": "first", "caption": "second"},
			want:   "first",
		},
		{
			name:   "caption used when content absent",
			record: CaptionRecord{"caption": "from caption", "text": "from text"},
			want:   "from caption",
		},
		{
			name:   "text used when earlier fields absent",
			record: CaptionRecord{"text": "from text", "caption_text": "last"},
			want:   "from text",
		},
		{
			name:   "caption_text as final named field",
			record: CaptionRecord{"caption_text": "only this"},
			want:   "only this",
		},
		{
			name:   "blank content skipped",
			record: CaptionRecord{"content": "   ", "caption": "fallback"},
			want:   "fallback",
		},
		{
			name:   "non-string content skipped",
			record: CaptionRecord{"content": 42, "caption": "fallback"},
			want:   "fallback",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CaptionText(tc.record); got != tc.want {
				t.Errorf("CaptionText(%v) = %q, want %q", tc.record, got, tc.want)
			}
		})
	}
}

func TestCaptionTextFallbackDump(t *testing.T) {
	record := CaptionRecord{"id": "abc", "score": float64(3)}
	got := CaptionText(record)

	if got == "" {
		t.Fatal("CaptionText must never return an empty string")
	}
	if !strings.Contains(got, "abc") {
		t.Errorf("fallback dump %q should include the record's values", got)
	}
}

func TestCaptionTextEmptyRecord(t *testing.T) {
	if got := CaptionText(CaptionRecord{}); got == "" {
		t.Fatal("CaptionText of an empty record must still be non-empty")
	}
}
