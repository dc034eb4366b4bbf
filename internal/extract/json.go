package extract

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// extractJSON flattens an arbitrary JSON document into "key: value" text so
// structured knowledge-base files can be chunked like prose.
func extractJSON(content []byte) (string, error) {
	var v any
	if err := json.Unmarshal(content, &v); err != nil {
		return "", fmt.Errorf("parse JSON: %w", err)
	}
	var b strings.Builder
	flattenValue(&b, "", v)
	return strings.TrimSpace(b.String()), nil
}

// extractJSONL flattens one JSON document per line. Blank lines are skipped;
// a malformed line fails the whole file.
func extractJSONL(content []byte) (string, error) {
	var b strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return "", fmt.Errorf("parse JSONL line %d: %w", line, err)
		}
		flattenValue(&b, "", v)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan JSONL: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

// flattenValue writes v as text, one "prefix: scalar" line per leaf. Object
// keys are emitted in sorted order so output is deterministic.
func flattenValue(b *strings.Builder, prefix string, v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenValue(b, joinKey(prefix, k), val[k])
		}
	case []any:
		for _, item := range val {
			flattenValue(b, prefix, item)
		}
	case string:
		writeLeaf(b, prefix, val)
	case float64:
		writeLeaf(b, prefix, strconv.FormatFloat(val, 'f', -1, 64))
	case bool:
		writeLeaf(b, prefix, strconv.FormatBool(val))
	case nil:
		// Nulls carry no searchable text.
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func writeLeaf(b *strings.Builder, prefix, value string) {
	if value == "" {
		return
	}
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteString(": ")
	}
	b.WriteString(value)
	b.WriteByte('\n')
}
