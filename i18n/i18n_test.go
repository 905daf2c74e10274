package i18n

import "testing"

func TestNewValidates(t *testing.T) {
	table, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	for _, lang := range Locales {
		if !table.Supported(lang) {
			t.Errorf("locale %s not present", lang)
		}
	}
	if table.Supported("fr-FR") {
		t.Error("fr-FR should not be supported")
	}
}

func TestKeySetsIdentical(t *testing.T) {
	table, err := New()
	if err != nil {
		t.Fatal(err)
	}
	ref := table.Strings(Locales[0])
	for _, lang := range Locales[1:] {
		m := table.Strings(lang)
		if len(m) != len(ref) {
			t.Fatalf("%s has %d keys, want %d", lang, len(m), len(ref))
		}
		for k := range ref {
			if _, ok := m[k]; !ok {
				t.Errorf("%s missing key %s", lang, k)
			}
		}
	}
}

func TestValidateRejectsMismatch(t *testing.T) {
	table, err := New()
	if err != nil {
		t.Fatal(err)
	}
	delete(table["vi-VN"], "tem_submit")
	if err := table.validate(); err == nil {
		t.Fatal("validate accepted a missing key")
	}
}
