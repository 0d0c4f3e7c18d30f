package credential

// tokenBaseURLs are endpoints known to expect ANTHROPIC_AUTH_TOKEN.
var tokenBaseURLs = map[string]struct{}{
	"https://api.aicodewith.com":             {},
	"https://api.moonshot.cn/anthropic":      {},
	"https://open.bigmodel.cn/api/anthropic": {},
	"https://anyrouter.top":                  {},
}

// keyBaseURLs are endpoints known to expect ANTHROPIC_API_KEY.
var keyBaseURLs = map[string]struct{}{
	"https://api.aicodemirror.com/api/claudecode": {},
	"https://api.anthropic.com":                   {},
}

// Resolve determines the credential kind for baseURL.
//
// A recognized override (key, k, token, t; any case) wins. Unrecognized
// overrides are ignored and the exact-match URL tables are consulted next.
// Anything else is TOKEN.
func Resolve(baseURL, override string) Kind {
	if override != "" {
		if k, ok := parseOverride(override); ok {
			return k
		}
	}
	if _, ok := tokenBaseURLs[baseURL]; ok {
		return KindToken
	}
	if _, ok := keyBaseURLs[baseURL]; ok {
		return KindKey
	}
	return KindToken
}
