package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJsonFromText(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "markdown json block",
			text: "Here is the script:\n```json\n{\"scenes\": []}\n```\nDone.",
			want: `{"scenes": []}`,
		},
		{
			name: "markdown block without language",
			text: "```\n[1, 2, 3]\n```",
			want: `[1, 2, 3]`,
		},
		{
			name: "bare object with prose around",
			text: `The plan is {"title": "Intro"} as requested.`,
			want: `{"title": "Intro"}`,
		},
		{
			name: "array before object picks earliest start",
			text: `noise [{"a": 1}] trailing`,
			want: `[{"a": 1}]`,
		},
		{
			name: "no json returns raw text",
			text: "nothing to see here",
			want: "nothing to see here",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractJsonFromText(tc.text))
		})
	}
}
