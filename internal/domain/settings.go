package domain

import "strings"

// Settings are the user preferences that shape disruptor rankings.
type Settings struct {
	// DistractionSites are sources always treated as distractions, whatever
	// their category.
	DistractionSites []string `json:"distraction_sites"`
	// WhitelistSites are sources never reported as distractions.
	WhitelistSites []string `json:"whitelist_sites"`
}

// Normalize trims, lowercases and deduplicates both lists, keeping order.
func (s Settings) Normalize() Settings {
	return Settings{
		DistractionSites: normalizeSites(s.DistractionSites),
		WhitelistSites:   normalizeSites(s.WhitelistSites),
	}
}

// Whitelisted reports whether source contains any whitelisted site.
func (s Settings) Whitelisted(source string) bool {
	return matchesAny(source, s.WhitelistSites)
}

// Distracting reports whether source contains any listed distraction site.
func (s Settings) Distracting(source string) bool {
	return matchesAny(source, s.DistractionSites)
}

func matchesAny(source string, sites []string) bool {
	lower := strings.ToLower(source)
	for _, site := range sites {
		site = strings.ToLower(strings.TrimSpace(site))
		if site != "" && strings.Contains(lower, site) {
			return true
		}
	}
	return false
}

func normalizeSites(sites []string) []string {
	seen := make(map[string]bool, len(sites))
	out := make([]string, 0, len(sites))
	for _, site := range sites {
		site = strings.ToLower(strings.TrimSpace(site))
		if site == "" || seen[site] {
			continue
		}
		seen[site] = true
		out = append(out, site)
	}
	return out
}
