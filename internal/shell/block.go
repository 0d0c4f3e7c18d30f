package shell

import (
	"fmt"
	"os"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"github.com/xabinapal/ccswitch/internal/fsutil"
)

// Markers delimiting the managed block in a startup file.
const (
	BeginMarker = "# >>> ccswitch >>>"
	EndMarker   = "# <<< ccswitch <<<"
)

// Var is one variable assignment.
type Var struct {
	Name  string
	Value string
}

// Env is a set of assignments plus variables to remove.
type Env struct {
	Set   []Var
	Unset []string
}

// Commands renders env as commands for the given shell, assignments first.
func Commands(t Type, env Env) []string {
	lines := make([]string, 0, len(env.Set)+len(env.Unset))
	for _, v := range env.Set {
		switch t {
		case PowerShell:
			lines = append(lines, fmt.Sprintf("$env:%s = %s", v.Name, powerShellQuote(v.Value)))
		case Cmd:
			lines = append(lines, fmt.Sprintf(`set "%s=%s"`, v.Name, v.Value))
		default:
			lines = append(lines, fmt.Sprintf("export %s=%s", v.Name, posixQuote(v.Value)))
		}
	}
	for _, name := range env.Unset {
		switch t {
		case PowerShell:
			lines = append(lines, fmt.Sprintf("Remove-Item Env:%s -ErrorAction SilentlyContinue", name))
		case Cmd:
			lines = append(lines, fmt.Sprintf(`set "%s="`, name))
		default:
			lines = append(lines, "unset "+name)
		}
	}
	return lines
}

// Block wraps the commands for env in the begin and end markers.
func Block(t Type, env Env) string {
	var b strings.Builder
	b.WriteString(BeginMarker)
	b.WriteByte('\n')
	for _, line := range Commands(t, env) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(EndMarker)
	b.WriteByte('\n')
	return b.String()
}

// Upsert replaces the first complete block in content with block, or
// appends block when there is none. An end marker pairs with the closest
// begin marker before it, so an orphaned begin marker never swallows the
// lines that follow it.
func Upsert(content, block string) string {
	offset := 0
	for {
		rel := strings.Index(content[offset:], EndMarker)
		if rel < 0 {
			break
		}
		endMarker := offset + rel
		start := strings.LastIndex(content[:endMarker], BeginMarker)
		if start < 0 {
			offset = endMarker + len(EndMarker)
			continue
		}

		end := endMarker + len(EndMarker)
		if strings.HasPrefix(content[end:], "\r\n") {
			end += 2
		} else if strings.HasPrefix(content[end:], "\n") {
			end++
		}
		return content[:start] + block + content[end:]
	}

	if content == "" {
		return block
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + block
}

// UpsertFile applies Upsert to the file at path, creating it and its
// parent directory when missing.
func UpsertFile(path, block string) error {
	// #nosec G304 - path is a shell startup file under the user's home directory
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	perm := os.FileMode(0644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	updated := Upsert(string(data), block)
	if updated == string(data) {
		return nil
	}
	return fsutil.WriteFileAtomic(path, []byte(updated), perm)
}

// posixQuote always single-quotes the value, escaping embedded quotes.
func posixQuote(s string) string {
	quoted := shellescape.Quote(s)
	if quoted == s {
		return "'" + s + "'"
	}
	return quoted
}

func powerShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
