package judge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxFeedbackLength = 240

var (
	scorePattern    = regexp.MustCompile(`(?i)score\s*[:=]?\s*(\d{1,3})`)
	feedbackPattern = regexp.MustCompile(`(?i)feedback\s*[:=]?\s*(.+)$`)
	markerPattern   = regexp.MustCompile(`(?i)drawing\s*#?\s*(\d+)`)
)

// parseBatch reads one line per drawing. A line is matched to an entry by
// its "Drawing N" marker first and by the player's name otherwise.
func parseBatch(raw string, entries []Entry) ([]Score, error) {
	found := make(map[string]Score, len(entries))
	for _, line := range strings.Split(raw, "\n") {
		line = cleanLine(line)
		if line == "" {
			continue
		}
		score, ok := parseScore(line)
		if !ok {
			continue
		}
		index := markerIndex(line, len(entries))
		if index < 0 {
			index = nameIndex(line, entries)
		}
		if index < 0 {
			continue
		}
		entry := entries[index]
		if _, seen := found[entry.PlayerID]; seen {
			continue
		}
		found[entry.PlayerID] = Score{
			PlayerID: entry.PlayerID,
			Score:    score,
			Feedback: parseFeedback(line),
		}
	}
	if len(found) < len(entries) {
		return nil, fmt.Errorf("%w: parsed %d of %d drawings", ErrIncomplete, len(found), len(entries))
	}
	out := make([]Score, 0, len(entries))
	for _, entry := range entries {
		out = append(out, found[entry.PlayerID])
	}
	return out, nil
}

func parseSingle(raw string) (int, string, error) {
	text := cleanLine(strings.ReplaceAll(raw, "\n", " "))
	score, ok := parseScore(text)
	if !ok {
		return 0, "", fmt.Errorf("%w: no score in response", ErrIncomplete)
	}
	feedback := parseFeedback(text)
	if feedback == "" {
		feedback = truncate(strings.TrimSpace(scorePattern.ReplaceAllString(text, "")), maxFeedbackLength)
	}
	return score, feedback, nil
}

func parseScore(line string) (int, bool) {
	match := scorePattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return clampScore(value), true
}

func parseFeedback(line string) string {
	match := feedbackPattern.FindStringSubmatch(line)
	if match == nil {
		return ""
	}
	feedback := strings.Trim(strings.TrimSpace(match[1]), `"'|`)
	return truncate(strings.TrimSpace(feedback), maxFeedbackLength)
}

func markerIndex(line string, count int) int {
	match := markerPattern.FindStringSubmatch(line)
	if match == nil {
		return -1
	}
	position, err := strconv.Atoi(match[1])
	if err != nil || position < 1 || position > count {
		return -1
	}
	return position - 1
}

func nameIndex(line string, entries []Entry) int {
	lower := strings.ToLower(line)
	for i, entry := range entries {
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		if name == "" {
			continue
		}
		if strings.HasPrefix(lower, name) {
			return i
		}
	}
	return -1
}

func cleanLine(line string) string {
	line = strings.ReplaceAll(line, "*", "")
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-•")
	return strings.TrimSpace(line)
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return strings.TrimSpace(text[:max])
}
