// Package attrs reads values back out of slog-style argument lists.
package attrs

import "log/slog"

// ExtractString returns the string stored under key in args, which may mix
// alternating key/value pairs with slog.Attr values. The last match wins,
// matching how a handler renders duplicate keys. Non-string values are skipped.
func ExtractString(args []any, key string) string {
	found := ""
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case slog.Attr:
			if v.Key == key && v.Value.Kind() == slog.KindString {
				found = v.Value.String()
			}
		case string:
			if i+1 >= len(args) {
				return found
			}
			if s, ok := args[i+1].(string); ok && v == key {
				found = s
			}
			i++
		}
	}
	return found
}
