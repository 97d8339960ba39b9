package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(r Result) []string {
	out := make([]string, 0, len(r.Values))
	for _, v := range r.Values {
		out = append(out, v.String())
	}
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      []string
		encoding  Encoding
		malformed []int
	}{
		{
			name:     "array yields elements",
			raw:      `[{"a":1},{"a":2}]`,
			want:     []string{`{"a":1}`, `{"a":2}`},
			encoding: EncodingArray,
		},
		{
			name:     "line-delimited",
			raw:      "{\"a\":1}\n{\"a\":2}",
			want:     []string{`{"a":1}`, `{"a":2}`},
			encoding: EncodingLines,
		},
		{
			name:      "malformed middle line is dropped",
			raw:       "{\"a\":1}\nnot json\n{\"a\":2}",
			want:      []string{`{"a":1}`, `{"a":2}`},
			encoding:  EncodingLines,
			malformed: []int{2},
		},
		{
			name:     "empty",
			raw:      "",
			want:     []string{},
			encoding: EncodingEmpty,
		},
		{
			name:     "whitespace only",
			raw:      " \n\t\r\n",
			want:     []string{},
			encoding: EncodingEmpty,
		},
		{
			name:     "single pretty document",
			raw:      "{\n  \"b\": 1,\n  \"a\": [1, 2]\n}\n",
			want:     []string{`{"b":1,"a":[1,2]}`},
			encoding: EncodingDocument,
		},
		{
			name:     "scalar document",
			raw:      `"hello"`,
			want:     []string{`"hello"`},
			encoding: EncodingDocument,
		},
		{
			name:     "empty array",
			raw:      `[]`,
			want:     []string{},
			encoding: EncodingArray,
		},
		{
			name:     "blank and CRLF lines",
			raw:      "{\"a\":1}\r\n\r\n  {\"a\": 2}  \r\n",
			want:     []string{`{"a":1}`, `{"a":2}`},
			encoding: EncodingLines,
		},
		{
			name:      "every line malformed",
			raw:       "nope\n{broken",
			want:      []string{},
			encoding:  EncodingLines,
			malformed: []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]byte(tt.raw))

			if diff := cmp.Diff(tt.want, values(got)); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.encoding, got.Encoding)

			lines := make([]int, 0, len(got.Malformed))
			for _, m := range got.Malformed {
				lines = append(lines, m.Line)
				assert.Error(t, m.Err)
			}
			if tt.malformed == nil {
				assert.Empty(t, lines)
			} else {
				assert.Equal(t, tt.malformed, lines)
			}
		})
	}
}

func TestNormalizeExcerptTruncated(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := Normalize([]byte("{\"ok\":true}\n" + long))

	require.Len(t, got.Malformed, 1)
	assert.Len(t, got.Malformed[0].Excerpt, MaxExcerpt)
	assert.Equal(t, 2, got.Malformed[0].Line)
}

func TestValueKind(t *testing.T) {
	tests := map[string]Kind{
		`null`:    KindNull,
		`true`:    KindBool,
		`false`:   KindBool,
		`-1.5e3`:  KindNumber,
		`"s"`:     KindString,
		`[1]`:     KindArray,
		`{"a":1}`: KindObject,
	}
	for raw, want := range tests {
		assert.Equal(t, want, MustValue(raw).Kind(), raw)
	}
	assert.Equal(t, KindNull, Value{}.Kind())
}

func TestValueJSON(t *testing.T) {
	v := MustValue(`{ "z": 1, "a": { "k": [ 1, 2 ] } }`)

	out, err := json.Marshal(map[string]Value{"v": v})
	require.NoError(t, err)
	assert.Equal(t, `{"v":{"z":1,"a":{"k":[1,2]}}}`, string(out))

	var back struct{ V Value }
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, v.String(), back.V.String())

	_, err = NewValue([]byte(`{"a":`))
	assert.Error(t, err)
}
