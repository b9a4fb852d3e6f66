package util

import (
	"regexp"
	"strings"
)

var markdownCodeBlockRe = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ExtractJsonFromText tries to find the largest JSON object/array in the text
func ExtractJsonFromText(text string) string {
	// 1. Try to find markdown code block first
	matches := markdownCodeBlockRe.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// 2. Fallback: Find first '{' or '[' and last '}' or ']'
	start := firstIndexOfEither(text, "{", "[")
	if start == -1 {
		return text // No JSON found, return raw text
	}

	end := lastIndexOfEither(text, "}", "]")
	if end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

func firstIndexOfEither(text, a, b string) int {
	ia := strings.Index(text, a)
	ib := strings.Index(text, b)
	if ia == -1 {
		return ib
	}
	if ib == -1 {
		return ia
	}
	if ia < ib {
		return ia
	}
	return ib
}

func lastIndexOfEither(text, a, b string) int {
	ia := strings.LastIndex(text, a)
	ib := strings.LastIndex(text, b)
	if ia > ib {
		return ia
	}
	return ib
}
