package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		meta    map[string]any
		body    string
		err     error
	}{
		{
			name:    "with frontmatter",
			content: "---\nSubject: Hello\nTag: contact\n---\nBody line\n",
			meta:    map[string]any{"Subject": "Hello", "Tag": "contact"},
			body:    "Body line\n",
		},
		{
			name:    "crlf after closing delimiter",
			content: "---\r\nSubject: Hi\r\n---\r\nBody",
			meta:    map[string]any{"Subject": "Hi"},
			body:    "Body",
		},
		{
			name:    "without frontmatter",
			content: "Just text",
			meta:    map[string]any{},
			body:    "Just text",
		},
		{
			name:    "empty frontmatter",
			content: "---\n---\nBody",
			meta:    map[string]any{},
			body:    "Body",
		},
		{
			name:    "unterminated",
			content: "---\nSubject: x\nBody",
			err:     ErrInvalidFrontmatter,
		},
		{
			name:    "bad yaml",
			content: "---\nSubject: [unclosed\n---\nBody",
			err:     ErrInvalidFrontmatter,
		},
		{
			name:    "only opening delimiter",
			content: "---\n",
			err:     ErrInvalidFrontmatter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := ParseTemplate([]byte(tt.content))
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.meta, tmpl.Metadata)
			require.Equal(t, tt.body, tmpl.Body)
		})
	}
}
