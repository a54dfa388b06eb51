package literal_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/snapdiff/core/literal"
)

func TestEncode(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 123456789, time.UTC)

	tests := []struct {
		name    string
		value   any
		sqlType string
		want    string
	}{
		{name: "nil", value: nil, sqlType: "text", want: "NULL"},
		{name: "string", value: "abc", sqlType: "text", want: "'abc'"},
		{name: "string with quote", value: "it's", sqlType: "varchar(10)", want: "'it''s'"},
		{name: "integer", value: 42, sqlType: "integer", want: "42"},
		{name: "unsigned", value: uint8(7), sqlType: "smallint", want: "7"},
		{name: "float", value: 1.5, sqlType: "real", want: "1.5"},
		{name: "bool", value: true, sqlType: "boolean", want: "true"},
		{name: "int array", value: []int{1, 2, 3}, sqlType: "integer[]", want: "'{1,2,3}'"},
		{name: "nested int array", value: [][]int{{1, 2}, {3, 4}}, sqlType: "integer[][]", want: "'{{1,2},{3,4}}'"},
		{name: "empty array", value: []string{}, sqlType: "text[]", want: "'{}'"},
		{name: "text array", value: []string{"a", `b"c`, "d'e"}, sqlType: "text[]", want: `'{"a","b\"c","d''e"}'`},
		{name: "any array", value: []any{1, nil, 3}, sqlType: "integer[]", want: "'{1,NULL,3}'"},
		{name: "json", value: map[string]any{"a": "it's"}, sqlType: "jsonb", want: `'{"a":"it''s"}'`},
		{name: "json array value", value: []int{1, 2}, sqlType: "json", want: "'[1,2]'"},
		{name: "date", value: ts, sqlType: "date", want: "'2024-03-05'"},
		{name: "time", value: ts, sqlType: "time", want: "'14:07:09.123'"},
		{name: "timestamp", value: ts, sqlType: "timestamp", want: "'2024-03-05 14:07:09.123'"},
		{name: "timestamptz", value: ts, sqlType: "timestamp with time zone", want: "'2024-03-05 14:07:09.123Z'"},
		{name: "date array", value: []time.Time{ts}, sqlType: "date[]", want: `'{"2024-03-05"}'`},
		{name: "point", value: literal.Point{X: 1, Y: 2.5}, sqlType: "point", want: "'(1,2.5)'"},
		{name: "line", value: literal.Line{A: 1, B: -1, C: 0}, sqlType: "line", want: "'{1,-1,0}'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			got, err := literal.Encode(tt.value, tt.sqlType)
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, tt.want)
		})
	}
}

func TestEncode_Unsupported(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		sqlType string
	}{
		{name: "struct as text", value: struct{}{}, sqlType: "text"},
		{name: "scalar as array", value: 1, sqlType: "integer[]"},
		{name: "channel as json", value: make(chan int), sqlType: "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			_, err := literal.Encode(tt.value, tt.sqlType)
			c.Assert(err, qt.ErrorIs, literal.ErrUnsupported)
		})
	}
}

func TestEnum(t *testing.T) {
	c := qt.New(t)
	c.Assert(literal.Enum("happy", "", ""), qt.Equals, "'happy'")
	c.Assert(literal.Enum("it's", "", "mood"), qt.Equals, `'it''s'::"mood"`)
	c.Assert(literal.Enum("ok", "auth", "mood"), qt.Equals, `'ok'::"auth"."mood"`)
}
