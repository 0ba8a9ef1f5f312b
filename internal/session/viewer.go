package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SessionFile represents a session log file on disk.
type SessionFile struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	NumEvents int
}

// ListSessions finds .jsonl session log files in dir.
func ListSessions(dir string) ([]SessionFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading session directory: %w", err)
	}

	var files []SessionFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), "-session.jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, e.Name())
		n, _ := countLines(path) //nolint:errcheck
		files = append(files, SessionFile{
			Path:      path,
			Name:      e.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			NumEvents: n,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close() //nolint:errcheck
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}

// ReadEvents parses all events from a session log file.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening session file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var events []Event
	scanner := bufio.NewScanner(f)
	// Increase buffer for large lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue // skip malformed lines
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	return events, nil
}

// RenderTimeline writes a human-readable session timeline to w.
//
//nolint:errcheck // display-only writes; errors are not actionable
func RenderTimeline(w io.Writer, events []Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w, " SESSION TIMELINE")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	start := events[0].Timestamp
	for _, ev := range events {
		ts := formatDuration(ev.Timestamp.Sub(start))

		switch ev.Type {
		case EventSessionStart:
			model, _ := ev.Data["model"].(string)     //nolint:errcheck
			backend, _ := ev.Data["backend"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] 🚀 Session started  model=%s  backend=%s\n", ts, model, backend)

		case EventFetchComplete:
			source, _ := ev.Data["source"].(string) //nolint:errcheck
			item, _ := ev.Data["item_id"].(string)  //nolint:errcheck
			chars := jsonNumber(ev.Data["chars"])
			fmt.Fprintf(w, "[%s] 📥 Fetched %s %s (%d chars)\n", ts, source, item, chars)

		case EventStageStart:
			stage, _ := ev.Data["stage"].(string) //nolint:errcheck
			role, _ := ev.Data["role"].(string)   //nolint:errcheck
			input, _ := ev.Data["input"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] ▶  %s as %s  input=%s\n", ts, stage, role, input)

		case EventStageComplete:
			stage, _ := ev.Data["stage"].(string) //nolint:errcheck
			seq := jsonNumber(ev.Data["seq"])
			dur := jsonNumber(ev.Data["duration_ms"])
			fmt.Fprintf(w, "[%s] ✓  %s complete  artifact #%d (%dms)\n", ts, stage, seq, dur)

		case EventStageFailed:
			stage, _ := ev.Data["stage"].(string)     //nolint:errcheck
			kind, _ := ev.Data["error_kind"].(string) //nolint:errcheck
			msg, _ := ev.Data["message"].(string)     //nolint:errcheck
			fmt.Fprintf(w, "[%s] ✗  %s failed [%s]: %s\n", ts, stage, kind, msg)

		case EventExport:
			format, _ := ev.Data["format"].(string)    //nolint:errcheck
			dest, _ := ev.Data["destination"].(string) //nolint:errcheck
			size := jsonNumber(ev.Data["bytes"])
			fmt.Fprintf(w, "[%s] 📄 Exported %s to %s (%d bytes)\n", ts, format, dest, size)

		case EventError:
			msg, _ := ev.Data["message"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] ❌ Error: %s\n", ts, msg)

		case EventSessionEnd:
			run := jsonNumber(ev.Data["stages_run"])
			failed := jsonNumber(ev.Data["failed"])
			dur := jsonNumber(ev.Data["duration_ms"])
			fmt.Fprintf(w, "[%s] 🏁 Session complete  %d stage(s) run  %d failed  (%dms)\n", ts, run, failed, dur)

		default:
			fmt.Fprintf(w, "[%s] %s %v\n", ts, ev.Type, ev.Data)
		}
	}
	fmt.Fprintln(w)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%6dms", d.Milliseconds())
	}
	return fmt.Sprintf("%6.1fs", d.Seconds())
}

// jsonNumber extracts a number from a JSON-decoded interface{} (float64 or json.Number).
func jsonNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64() //nolint:errcheck
		return int(i)
	}
	return 0
}
