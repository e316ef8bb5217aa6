package attrs

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{name: "pair", args: []any{"poll_id", "abcd1234", "option_id", "o1"}, want: "abcd1234"},
		{name: "slog attr", args: []any{slog.String("poll_id", "abcd1234")}, want: "abcd1234"},
		{name: "mixed", args: []any{slog.Int("count", 2), "poll_id", "abcd1234"}, want: "abcd1234"},
		{name: "last duplicate wins", args: []any{"poll_id", "old", "poll_id", "new"}, want: "new"},
		{name: "non string value", args: []any{"poll_id", 42}, want: ""},
		{name: "value that looks like the key", args: []any{"subject", "poll_id", "reason", "x"}, want: ""},
		{name: "dangling key", args: []any{"poll_id"}, want: ""},
		{name: "missing", args: []any{"reason", "duplicate"}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractString(tt.args, "poll_id"))
		})
	}
}
