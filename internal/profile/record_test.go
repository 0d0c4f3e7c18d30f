package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xabinapal/ccswitch/internal/credential"
)

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Profile
	}{
		{
			name: "five fields",
			line: "kimi|Kimi|sk-abc|https://api.moonshot.cn/anthropic|TOKEN",
			want: Profile{Alias: "kimi", DisplayName: "Kimi", Secret: "sk-abc", BaseURL: "https://api.moonshot.cn/anthropic", Kind: credential.KindToken},
		},
		{
			name: "key kind",
			line: "mirror|Mirror|k1|https://api.aicodemirror.com/api/claudecode|KEY",
			want: Profile{Alias: "mirror", DisplayName: "Mirror", Secret: "k1", BaseURL: "https://api.aicodemirror.com/api/claudecode", Kind: credential.KindKey},
		},
		{
			name: "legacy four fields",
			line: "old|Old|tok|https://example.com",
			want: Profile{Alias: "old", DisplayName: "Old", Secret: "tok", BaseURL: "https://example.com", Kind: credential.KindToken},
		},
		{
			name: "empty kind",
			line: "e|E|tok|https://example.com|",
			want: Profile{Alias: "e", DisplayName: "E", Secret: "tok", BaseURL: "https://example.com", Kind: credential.KindToken},
		},
		{
			name: "lowercase kind",
			line: "l|L|tok|https://example.com|key",
			want: Profile{Alias: "l", DisplayName: "L", Secret: "tok", BaseURL: "https://example.com", Kind: credential.KindKey},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRecord(tt.line, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRecordMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "too few fields", line: "a|b|c"},
		{name: "too many fields", line: "a|b|c|d|KEY|extra"},
		{name: "unknown kind", line: "a|b|c|d|BEARER"},
		{name: "empty alias", line: "|b|c|d|KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRecord(tt.line, 7)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRecord)

			var recErr *RecordError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, 7, recErr.Line)
		})
	}
}

func TestFormatRecord(t *testing.T) {
	p := Profile{Alias: "a", DisplayName: "A", Secret: "s", BaseURL: "https://x"}
	assert.Equal(t, "a|A|s|https://x|TOKEN", formatRecord(p))

	p.Kind = credential.KindKey
	assert.Equal(t, "a|A|s|https://x|KEY", formatRecord(p))
}

func TestParseRecordsSkipsBlankLines(t *testing.T) {
	data := []byte("a|A|s|https://x|KEY\r\n\n   \nb|B|t|https://y\n")

	profiles, err := parseRecords(data)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "a", profiles[0].Alias)
	assert.Equal(t, credential.KindKey, profiles[0].Kind)
	assert.Equal(t, "b", profiles[1].Alias)
	assert.Equal(t, credential.KindToken, profiles[1].Kind)
}

func TestParseRecordsReportsLineNumber(t *testing.T) {
	data := []byte("a|A|s|https://x|KEY\n\nbroken\n")

	_, err := parseRecords(data)
	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 3, recErr.Line)
	assert.Contains(t, err.Error(), "line 3")
}

func TestProfileValidate(t *testing.T) {
	valid := Profile{Alias: "a", DisplayName: "A", Secret: "s", BaseURL: "https://x"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(p *Profile)
	}{
		{"empty alias", func(p *Profile) { p.Alias = "" }},
		{"pipe in alias", func(p *Profile) { p.Alias = "a|b" }},
		{"newline in name", func(p *Profile) { p.DisplayName = "A\nB" }},
		{"pipe in secret", func(p *Profile) { p.Secret = "s|x" }},
		{"carriage return in url", func(p *Profile) { p.BaseURL = "https://x\r" }},
		{"bad kind", func(p *Profile) { p.Kind = "BEARER" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidField)
		})
	}
}

func TestProfileName(t *testing.T) {
	assert.Equal(t, "kimi", Profile{Alias: "kimi"}.Name())
	assert.Equal(t, "Kimi K2", Profile{Alias: "kimi", DisplayName: "Kimi K2"}.Name())
}
