package geojson

import (
	"bytes"
	"log"
	"regexp"

	"github.com/buger/jsonparser"
)

var featureTypeRe = regexp.MustCompile(`"type"\s*:\s*"Feature"`)

// ChunkBuffer accumulates GeoJSON arriving in arbitrary byte chunks and
// surfaces complete features as soon as they can be recognized. Callers feed
// chunks in order and mark the last one final.
type ChunkBuffer struct {
	buf []byte
}

// Add appends a chunk and returns whatever complete features it can extract.
// Three strategies run in order: parse the whole buffer as a document,
// extract individual Feature objects by brace matching, and on the final
// chunk fall back to newline-delimited JSON. Bytes belonging to extracted
// features are dropped from the buffer.
func (c *ChunkBuffer) Add(chunk []byte, final bool) []Feature {
	c.buf = append(c.buf, chunk...)

	if features, err := Parse(c.buf); err == nil {
		c.buf = nil
		return features
	}

	features, consumed := c.extractFeatures()
	if consumed > 0 {
		c.buf = c.buf[consumed:]
	}

	if final && len(bytes.TrimSpace(c.buf)) > 0 {
		features = append(features, c.parseLines()...)
		c.buf = nil
	}
	return features
}

// Pending returns the number of buffered bytes not yet turned into features.
func (c *ChunkBuffer) Pending() int {
	return len(c.buf)
}

// extractFeatures scans the buffer for `"type": "Feature"` markers, expands
// each to the enclosing JSON object, and parses the ones that are complete.
// It returns the features found and the byte offset up to which the buffer
// was consumed.
func (c *ChunkBuffer) extractFeatures() ([]Feature, int) {
	var features []Feature
	consumed := 0

	for _, loc := range featureTypeRe.FindAllIndex(c.buf, -1) {
		if loc[0] < consumed {
			continue
		}
		start := bytes.LastIndexByte(c.buf[consumed:loc[0]], '{')
		if start < 0 {
			continue
		}
		start += consumed
		end := matchBraces(c.buf, start)
		if end < 0 {
			// Object is still incomplete, wait for more bytes.
			break
		}

		obj := c.buf[start : end+1]
		if t, err := jsonparser.GetString(obj, "type"); err != nil || t != "Feature" {
			continue
		}
		fs, err := Parse(obj)
		if err != nil {
			log.Printf("geojson: skipping malformed chunked feature: %v", err)
			consumed = end + 1
			continue
		}
		features = append(features, fs...)
		consumed = end + 1
	}

	return features, consumed
}

// matchBraces returns the index of the brace closing the object that opens at
// start, honoring strings and escapes, or -1 if the object is not yet
// complete.
func matchBraces(data []byte, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(data); i++ {
		b := data[i]
		if escaped {
			escaped = false
			continue
		}
		switch b {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

// parseLines treats the remaining buffer as newline-delimited JSON, one
// feature or geometry per line.
func (c *ChunkBuffer) parseLines() []Feature {
	var features []Feature
	for _, line := range bytes.Split(c.buf, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		fs, err := Parse(line)
		if err != nil {
			log.Printf("geojson: skipping line in chunked input: %v", err)
			continue
		}
		features = append(features, fs...)
	}
	return features
}
