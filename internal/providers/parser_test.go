package providers

import "testing"

func TestParseProviderList(t *testing.T) {
	refs := ParseProviderList("mock|OpenAI:key1|openai:key2|openai:key1")
	if len(refs) != 3 {
		t.Fatalf("expected 3 providers got %d", len(refs))
	}
	if refs[1].Name != "openai" || refs[1].KeyAlias != "key1" {
		t.Fatalf("unexpected parse result: %+v", refs[1])
	}
	if refs[2].String() != "openai:key2" {
		t.Fatalf("unexpected ref string: %s", refs[2])
	}
}

func TestParseProviderListEmpty(t *testing.T) {
	refs := ParseProviderList(" | ")
	if len(refs) != 1 || refs[0].Name != "mock" {
		t.Fatalf("expected mock default, got %+v", refs)
	}
}
