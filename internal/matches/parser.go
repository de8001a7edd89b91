// Package matches turns raw generative backend output into a validated,
// ordered recommendation list. Parsing follows a fixed block grammar and
// anything outside it is dropped and counted, never raised.
package matches

import (
	"bufio"
	"strconv"
	"strings"
)

// MatchResult is one parsed block from the backend text. It may reference a
// name the backend invented; validation catches that later.
type MatchResult struct {
	Rank         int
	Name         string
	Expertise    string
	Reason       string
	Availability string
	Education    string
}

// Block markers. The prompt asks for the tag pair, but backends that ignore
// formatting instructions often fall back to plain sentinels, so both forms
// are recognized.
const (
	tagStart      = "<match>"
	tagEnd        = "</match>"
	sentinelStart = "match:"
	sentinelEnd   = "end match"
)

// Parse scans the text for match blocks. Each block starts with a start
// marker, carries "key: value" lines and closes with an end marker. Blocks
// missing a required field or a matching end marker are dropped and counted
// in malformed.
func Parse(text string) (results []MatchResult, malformed int) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current map[string]string
	inBlock := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lower := strings.ToLower(line)

		switch {
		case lower == tagStart || lower == sentinelStart:
			if inBlock {
				// previous block never closed
				malformed++
			}
			current = make(map[string]string)
			inBlock = true
		case lower == tagEnd || lower == sentinelEnd:
			if !inBlock {
				continue
			}
			if result, ok := buildResult(current); ok {
				results = append(results, result)
			} else {
				malformed++
			}
			inBlock = false
		case inBlock:
			key, value, ok := splitField(line)
			if !ok {
				continue
			}
			current[key] = value
		}
	}

	if inBlock {
		malformed++
	}

	return results, malformed
}

// splitField parses a "key: value" or "<key>value</key>" line.
func splitField(line string) (key, value string, ok bool) {
	if strings.HasPrefix(line, "<") {
		if end := strings.Index(line, ">"); end > 1 {
			key = strings.ToLower(line[1:end])
			value = line[end+1:]
			if closing := strings.LastIndex(value, "</"); closing >= 0 {
				value = value[:closing]
			}
			return key, strings.TrimSpace(value), true
		}
	}

	key, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}

	return strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value), true
}

// buildResult checks the required fields {rank, name, expertise, reason} and
// assembles the result. A rank that is not a positive integer counts as
// missing.
func buildResult(fields map[string]string) (MatchResult, bool) {
	rank, ok := parseRank(fields["rank"])
	if !ok {
		return MatchResult{}, false
	}

	name := fields["name"]
	expertise := fields["expertise"]
	reason := fields["reason"]
	if name == "" || expertise == "" || reason == "" {
		return MatchResult{}, false
	}

	return MatchResult{
		Rank:         rank,
		Name:         name,
		Expertise:    expertise,
		Reason:       reason,
		Availability: fields["availability"],
		Education:    fields["education"],
	}, true
}

func parseRank(s string) (int, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	rank, err := strconv.Atoi(s)
	if err != nil || rank < 1 {
		return 0, false
	}
	return rank, true
}
