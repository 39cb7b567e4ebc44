package application

import "strings"

// ParseTags splits comma separated input into lowercase, trimmed tags and returns
// the ones not already in existing. Duplicates inside input are reported once.
func ParseTags(input string, existing []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, tag := range existing {
		seen[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}

	var added []string
	for _, part := range strings.Split(input, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		added = append(added, tag)
	}
	return added
}

// mergeTags normalizes tags and appends the new ones parsed from input.
func mergeTags(tags []string, input string) []string {
	merged := ParseTags(strings.Join(tags, ","), nil)
	merged = append(merged, ParseTags(input, merged)...)
	if merged == nil {
		return []string{}
	}
	return merged
}
