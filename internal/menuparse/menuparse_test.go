package menuparse

import (
	"reflect"
	"testing"
)

func TestIsMenuTextHeader(t *testing.T) {
	if !IsMenuText("ម្ហូបថ្ងៃនេះ") {
		t.Fatal("header line not recognized as menu")
	}
	if !IsMenuText("  ម្ហូបថ្ងៃច័ន្ទ\n១. បបរ") {
		t.Fatal("header with leading space not recognized")
	}
}

func TestIsMenuTextNumberedLines(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"two arabic items", "1. porridge\n2. soup", true},
		{"two khmer items", "១. បបរ\n២. សម្ល", true},
		{"mixed digits", "១. បបរ\n2. soup\n3. amok", true},
		{"single item", "1. porridge", false},
		{"empty", "", false},
		{"plain chatter", "what should we eat today?", false},
		{"numbers without dots", "1 porridge\n2 soup", false},
		{"out of range digit", "7. porridge\n8. soup", false},
	}
	for _, tc := range cases {
		if got := IsMenuText(tc.text); got != tc.want {
			t.Errorf("%s: IsMenuText = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestExtractItems(t *testing.T) {
	text := "ម្ហូបថ្ងៃនេះ\n១. បបរ\n២. សម្លការី\n3. amok\nnot a dish"
	got := ExtractItems(text)
	want := []string{"បបរ", "សម្លការី", "amok"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractItems = %v, want %v", got, want)
	}
}

func TestExtractItemsDeduplicates(t *testing.T) {
	got := ExtractItems("1. soup\n2. soup\n3. amok")
	want := []string{"soup", "amok"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractItems = %v, want %v", got, want)
	}
}

func TestExtractItemsTrimsWhitespace(t *testing.T) {
	got := ExtractItems("  1.   porridge  \n\t2. soup")
	want := []string{"porridge", "soup"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractItems = %v, want %v", got, want)
	}
}
