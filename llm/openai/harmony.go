package openai

import (
	"regexp"
	"strings"
)

// Local servers running gpt-oss models may return raw Harmony channel markup
// instead of plain content. Only the final channel is the answer.

var (
	harmonyAnalysisRe = regexp.MustCompile(`(?s)<\|channel\|>analysis<\|message\|>(.*?)(?:<\|end\|>|<\|start\|>|$)`)
	harmonyFinalRe    = regexp.MustCompile(`(?s)<\|channel\|>final<\|message\|>(.*?)(?:<\|return\|>|<\|end\|>|$)`)
)

// harmonyReply holds the channels of one Harmony-formatted reply
type harmonyReply struct {
	Analysis string
	Final    string
}

// isHarmony checks if content contains Harmony format markers
func isHarmony(content string) bool {
	return strings.Contains(content, "<|channel|>") ||
		strings.Contains(content, "<|message|>") ||
		strings.Contains(content, "<|end|>") ||
		strings.Contains(content, "<|start|>")
}

// parseHarmony extracts the analysis and final channels
func parseHarmony(content string) harmonyReply {
	var reply harmonyReply
	if m := harmonyAnalysisRe.FindStringSubmatch(content); len(m) > 1 {
		reply.Analysis = strings.TrimSpace(m[1])
	}
	if m := harmonyFinalRe.FindStringSubmatch(content); len(m) > 1 {
		reply.Final = strings.TrimSpace(m[1])
	}
	// no channel tags at all: the whole content is the answer
	if reply.Final == "" && !strings.Contains(content, "<|channel|>") {
		reply.Final = strings.TrimSpace(content)
	}
	return reply
}

// cleanContent returns the user-visible part of a reply. Analysis is dropped;
// a reply with only analysis becomes empty.
func cleanContent(content string) string {
	if !isHarmony(content) {
		return content
	}
	return parseHarmony(content).Final
}
