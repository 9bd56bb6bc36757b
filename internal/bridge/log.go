package bridge

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"aerolink/pkg/logging"
)

// Captures key=value or key="value with spaces" pairs from a slog text line.
var logRegex = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// handleLatestLog returns the last captured log line, reformatted for
// compact display.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	line := logging.Capture.Last()
	writeJSON(w, map[string]string{"log": formatLogLine(line)})
}

// formatLogLine condenses a slog text line: time becomes HH:MM:SS, msg is
// unwrapped, remaining params are sorted and values over 20 chars dropped.
// Output: HH:MM:SS MsgValue (key=value, key=value)
func formatLogLine(raw string) string {
	matches := logRegex.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return raw
	}

	var msg string
	var timeStr string
	var params []string

	for _, m := range matches {
		key := m[1]
		val := m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				timeStr = t.Format("15:04:05")
			}
			continue
		case "level":
			continue
		case "msg":
			msg = val
			continue
		}

		if len(val) > 20 {
			continue
		}

		params = append(params, fmt.Sprintf("%s=%s", key, val))
	}

	if msg == "" {
		return raw
	}

	sort.Strings(params)

	output := msg
	if timeStr != "" {
		output = fmt.Sprintf("%s %s", timeStr, msg)
	}

	if len(params) > 0 {
		return fmt.Sprintf("%s (%s)", output, strings.Join(params, ", "))
	}
	return output
}
