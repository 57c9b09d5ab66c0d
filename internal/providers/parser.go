package providers

import "strings"

// ProviderRef is one entry of the llm_providers list, e.g. "groq:team".
type ProviderRef struct {
	Raw      string
	Name     string
	KeyAlias string
}

func (r ProviderRef) String() string {
	if r.KeyAlias == "" {
		return r.Name
	}
	return r.Name + ":" + r.KeyAlias
}

// ParseProviderList splits "openai:key1|groq|mock" into refs. Names are lowercased
// and exact duplicates dropped. An empty list yields the mock provider.
func ParseProviderList(raw string) []ProviderRef {
	parts := strings.Split(raw, "|")
	out := make([]ProviderRef, 0, len(parts))
	seen := map[string]struct{}{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ref := ProviderRef{Raw: p}
		if name, alias, ok := strings.Cut(p, ":"); ok {
			ref.Name = strings.ToLower(strings.TrimSpace(name))
			ref.KeyAlias = strings.TrimSpace(alias)
		} else {
			ref.Name = strings.ToLower(p)
		}
		if _, dup := seen[ref.String()]; dup {
			continue
		}
		seen[ref.String()] = struct{}{}
		out = append(out, ref)
	}
	if len(out) == 0 {
		out = append(out, ProviderRef{Raw: "mock", Name: "mock"})
	}
	return out
}
