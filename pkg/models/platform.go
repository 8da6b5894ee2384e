package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// platformAliases maps common shorthand to canonical platform names
var platformAliases = map[string]string{
	"ps1": "PlayStation",
	"psx": "PlayStation",
	"ps":  "PlayStation",
	"ps2": "PlayStation 2",
	"psp": "PlayStation Portable",
}

// LookupPlatform returns the platform with exactly the given name
func LookupPlatform(name string) (Platform, bool) {
	for _, p := range Platforms {
		if p.Name == name {
			return p, true
		}
	}
	return Platform{}, false
}

// ResolvePlatform maps user input onto a known platform. Exact and
// case-insensitive names win, then aliases, then a fuzzy match that must be
// unambiguous.
func ResolvePlatform(input string) (Platform, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return Platform{}, fmt.Errorf("empty platform name")
	}

	for _, p := range Platforms {
		if strings.EqualFold(p.Name, query) {
			return p, nil
		}
	}

	if canonical, ok := platformAliases[strings.ToLower(query)]; ok {
		p, _ := LookupPlatform(canonical)
		return p, nil
	}

	matches := fuzzy.RankFindFold(query, PlatformNames())
	switch len(matches) {
	case 0:
		return Platform{}, fmt.Errorf("unknown platform %q (known: %s)", input, strings.Join(PlatformNames(), ", "))
	case 1:
		p, _ := LookupPlatform(matches[0].Target)
		return p, nil
	}

	sort.Sort(matches)
	candidates := make([]string, len(matches))
	for i, m := range matches {
		candidates[i] = m.Target
	}
	return Platform{}, fmt.Errorf("ambiguous platform %q matches %s", input, strings.Join(candidates, ", "))
}

// ResolvePlatforms resolves a list of names, preserving caller order and
// dropping duplicates. An empty list selects every platform.
func ResolvePlatforms(inputs []string) ([]Platform, error) {
	if len(inputs) == 0 {
		out := make([]Platform, len(Platforms))
		copy(out, Platforms)
		return out, nil
	}

	seen := make(map[string]bool)
	var out []Platform
	for _, in := range inputs {
		p, err := ResolvePlatform(in)
		if err != nil {
			return nil, err
		}
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out, nil
}
