package i18n

import (
	"testing"
	"testing/fstest"
)

func TestBundledLocales(t *testing.T) {
	b, err := Load("en")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := b.T("tr", "home_title"); got != "Ana Sayfa" {
		t.Fatalf("tr home_title=%q", got)
	}
	if got := b.T("en", "home_title"); got != "Home" {
		t.Fatalf("en home_title=%q", got)
	}
	if got := b.T("fr", "add_favorite"); got != "Add to favourites" {
		t.Fatalf("unknown locale must fall back: %q", got)
	}
	if got := b.T("tr", "no_such_key"); got != "no_such_key" {
		t.Fatalf("missing key must render as key: %q", got)
	}
}

func TestBundledLocalesHaveSameKeys(t *testing.T) {
	b, err := Load("en")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for key := range b.messages["en"] {
		if b.messages["tr"][key] == "" {
			t.Errorf("tr is missing %q", key)
		}
	}
	for key := range b.messages["tr"] {
		if b.messages["en"][key] == "" {
			t.Errorf("en is missing %q", key)
		}
	}
}

func TestLoadFS_Errors(t *testing.T) {
	fsys := fstest.MapFS{
		"l/tr.json": {Data: []byte(`{"a":"b"}`)},
	}
	if _, err := LoadFS(fsys, "l", "en"); err == nil {
		t.Fatal("expected error for missing fallback locale")
	}

	fsys["l/en.json"] = &fstest.MapFile{Data: []byte(`{broken`)}
	if _, err := LoadFS(fsys, "l", "en"); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestEmptyMessageFallsBack(t *testing.T) {
	fsys := fstest.MapFS{
		"l/en.json": {Data: []byte(`{"k":"English"}`)},
		"l/tr.json": {Data: []byte(`{"k":""}`)},
	}
	b, err := LoadFS(fsys, "l", "en")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if got := b.T("tr", "k"); got != "English" {
		t.Fatalf("got %q", got)
	}
}
