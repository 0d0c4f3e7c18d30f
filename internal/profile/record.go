package profile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xabinapal/ccswitch/internal/credential"
	"github.com/xabinapal/ccswitch/internal/fsutil"
)

const (
	fieldSeparator = "|"
	legacyFields   = 4
	recordFields   = 5
)

// RecordError reports a line that could not be parsed.
type RecordError struct {
	Path   string
	Line   int
	Reason string
	Err    error
}

func (e *RecordError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Path != "" {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", loc, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", loc, e.Err, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// parseRecord parses one non-blank line. lineNo is only used for errors.
func parseRecord(line string, lineNo int) (Profile, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) < legacyFields || len(fields) > recordFields {
		return Profile{}, &RecordError{
			Line:   lineNo,
			Reason: fmt.Sprintf("expected %d or %d fields, got %d", legacyFields, recordFields, len(fields)),
			Err:    ErrMalformedRecord,
		}
	}

	p := Profile{
		Alias:       fields[0],
		DisplayName: fields[1],
		Secret:      fields[2],
		BaseURL:     fields[3],
		Kind:        credential.KindToken,
	}
	if p.Alias == "" {
		return Profile{}, &RecordError{Line: lineNo, Reason: "empty alias", Err: ErrMalformedRecord}
	}

	if len(fields) == recordFields && strings.TrimSpace(fields[4]) != "" {
		kind, err := credential.ParseKind(fields[4])
		if err != nil {
			return Profile{}, &RecordError{Line: lineNo, Reason: err.Error(), Err: ErrMalformedRecord}
		}
		p.Kind = kind
	}
	return p, nil
}

// formatRecord renders a profile as one line without the trailing newline.
func formatRecord(p Profile) string {
	return strings.Join([]string{
		p.Alias,
		p.DisplayName,
		p.Secret,
		p.BaseURL,
		string(p.EffectiveKind()),
	}, fieldSeparator)
}

// parseRecords parses every non-blank line of data.
func parseRecords(data []byte) ([]Profile, error) {
	var profiles []Profile

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		p, err := parseRecord(line, lineNo)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}
	return profiles, nil
}

// formatRecords renders profiles as newline-terminated lines.
func formatRecords(profiles []Profile) []byte {
	var buf bytes.Buffer
	for _, p := range profiles {
		buf.WriteString(formatRecord(p))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// readRecordFile parses the file at path. A missing file is an empty list.
func readRecordFile(path string) ([]Profile, []byte, error) {
	// #nosec G304 - path is the profile store path (controlled, from user config directory)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	profiles, err := parseRecords(data)
	if err != nil {
		var recErr *RecordError
		if errors.As(err, &recErr) {
			recErr.Path = path
		}
		return nil, nil, err
	}
	return profiles, data, nil
}

func writeRecordFile(path string, profiles []Profile) error {
	return fsutil.WriteFileAtomic(path, formatRecords(profiles), 0600)
}
