package utils

import (
	"encoding/json"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/pgvector/pgvector-go"
)

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// CleanJSONResponse strips markdown fences and chatter around the first JSON
// object or array in a model response.
func CleanJSONResponse(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```JSON", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)

	objStart := strings.Index(response, "{")
	arrStart := strings.Index(response, "[")

	if objStart != -1 && (arrStart == -1 || objStart < arrStart) {
		if objEnd := findMatching(response, objStart, '{', '}'); objEnd != -1 {
			response = response[objStart : objEnd+1]
		} else if last := strings.LastIndex(response, "}"); last > objStart {
			response = response[objStart : last+1]
		}
	} else if arrStart != -1 {
		if arrEnd := findMatching(response, arrStart, '[', ']'); arrEnd != -1 {
			response = response[arrStart : arrEnd+1]
		}
	}

	return strings.TrimSpace(response)
}

// RemoveTrailingCommas drops commas that directly precede a closing brace or
// bracket, a common model mistake.
func RemoveTrailingCommas(s string) string {
	return trailingComma.ReplaceAllString(s, "$1")
}

// DecodeModelJSON cleans a model response and decodes it into out, retrying
// once with trailing commas removed.
func DecodeModelJSON(response string, out any) error {
	cleaned := CleanJSONResponse(response)
	err := json.Unmarshal([]byte(cleaned), out)
	if err == nil {
		return nil
	}
	if retryErr := json.Unmarshal([]byte(RemoveTrailingCommas(cleaned)), out); retryErr == nil {
		return nil
	}
	return err
}

// findMatching returns the index of the delimiter closing the one at start,
// skipping string literals, or -1.
func findMatching(s string, start int, open, close byte) int {
	if start >= len(s) || s[start] != open {
		return -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}
		if char == '\\' && inString {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch char {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// TextToVector is a deterministic bag-of-words vector for providers without
// an embedding endpoint.
func TextToVector(text string) pgvector.Vector {
	text = strings.ToLower(strings.TrimSpace(text))
	words := strings.Fields(text)

	vector := make([]float32, EmbeddingDimensions)
	for _, word := range words {
		hash := hashWord(word)
		for i := 0; i < EmbeddingDimensions; i++ {
			influence := math.Sin(float64(hash+uint32(i))) * 0.1
			vector[i] += float32(influence)
		}
	}

	magnitude := float32(0)
	for _, val := range vector {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	if magnitude > 0 {
		for i := range vector {
			vector[i] /= magnitude
		}
	}

	return pgvector.NewVector(vector)
}

func hashWord(word string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(word))
	return h.Sum32()
}
