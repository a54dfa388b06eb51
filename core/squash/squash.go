// Package squash converts structured snapshot sub-entities to and from their
// flat string encoding.
//
// The squashed form is what snapshot files written by older tooling contain:
// one delimited string per index, foreign key, composite primary key, unique
// constraint, check constraint, policy, sequence or identity. It is only used
// at the JSON boundary (see package snapshot); every other stage works on the
// structured values from package ddl.
//
// # Encoding
//
// Fields are separated by ';', list items by ',', and the parts of a list
// item (an index column, a key/value pair) by ':' or '='. Every level escapes
// its own delimiter and the backslash with a backslash, so field content may
// contain any delimiter and Unsquash(Squash(x)) always reproduces x.
//
// Nil and empty lists and maps both encode to the empty string and decode to
// nil.
package squash

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/stokaro/snapdiff/core/ddl"
)

// ErrMalformed is returned when a squashed string cannot be decoded.
var ErrMalformed = errors.New("malformed squashed value")

const (
	escapeChar = '\\'
	fieldSep   = ';'
	listSep    = ','
	partSep    = ':'
	pairSep    = '='
)

// Index encodes an index as name;columns;isUnique;concurrently;method;where;with.
func Index(idx *ddl.Index) string {
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = join(partSep, c.Expression, formatBool(c.IsExpression), formatBool(c.Asc), c.Nulls, c.Opclass)
	}
	return join(fieldSep,
		idx.Name,
		joinList(cols),
		formatBool(idx.IsUnique),
		formatBool(idx.Concurrently),
		idx.Method,
		idx.Where,
		joinMap(idx.With),
	)
}

// UnsquashIndex is the inverse of Index.
func UnsquashIndex(s string) (*ddl.Index, error) {
	f, err := fields(s, 7, "index")
	if err != nil {
		return nil, err
	}
	items, err := splitList(f[1])
	if err != nil {
		return nil, err
	}
	idx := &ddl.Index{
		Name:         f[0],
		IsUnique:     parseBool(f[2]),
		Concurrently: parseBool(f[3]),
		Method:       f[4],
		Where:        f[5],
	}
	for _, item := range items {
		p, err := split(item, partSep)
		if err != nil {
			return nil, err
		}
		if len(p) != 5 {
			return nil, fmt.Errorf("%w: index column %q has %d parts", ErrMalformed, item, len(p))
		}
		idx.Columns = append(idx.Columns, ddl.IndexColumn{
			Expression:   p[0],
			IsExpression: parseBool(p[1]),
			Asc:          parseBool(p[2]),
			Nulls:        p[3],
			Opclass:      p[4],
		})
	}
	if idx.With, err = splitMap(f[6]); err != nil {
		return nil, err
	}
	return idx, nil
}

// ForeignKey encodes a foreign key as
// name;tableFrom;columnsFrom;tableTo;schemaTo;columnsTo;onDelete;onUpdate.
func ForeignKey(fk *ddl.ForeignKey) string {
	return join(fieldSep,
		fk.Name,
		fk.TableFrom,
		joinList(fk.ColumnsFrom),
		fk.TableTo,
		fk.SchemaTo,
		joinList(fk.ColumnsTo),
		fk.OnDelete,
		fk.OnUpdate,
	)
}

// UnsquashForeignKey is the inverse of ForeignKey.
func UnsquashForeignKey(s string) (*ddl.ForeignKey, error) {
	f, err := fields(s, 8, "foreign key")
	if err != nil {
		return nil, err
	}
	fk := &ddl.ForeignKey{
		Name:      f[0],
		TableFrom: f[1],
		TableTo:   f[3],
		SchemaTo:  f[4],
		OnDelete:  f[6],
		OnUpdate:  f[7],
	}
	if fk.ColumnsFrom, err = splitList(f[2]); err != nil {
		return nil, err
	}
	if fk.ColumnsTo, err = splitList(f[5]); err != nil {
		return nil, err
	}
	return fk, nil
}

// PrimaryKey encodes a composite primary key as name;columns.
func PrimaryKey(pk *ddl.PrimaryKey) string {
	return join(fieldSep, pk.Name, joinList(pk.Columns))
}

// UnsquashPrimaryKey is the inverse of PrimaryKey.
func UnsquashPrimaryKey(s string) (*ddl.PrimaryKey, error) {
	f, err := fields(s, 2, "primary key")
	if err != nil {
		return nil, err
	}
	cols, err := splitList(f[1])
	if err != nil {
		return nil, err
	}
	return &ddl.PrimaryKey{Name: f[0], Columns: cols}, nil
}

// Unique encodes a unique constraint as name;columns;nullsNotDistinct.
func Unique(u *ddl.Unique) string {
	return join(fieldSep, u.Name, joinList(u.Columns), formatBool(u.NullsNotDistinct))
}

// UnsquashUnique is the inverse of Unique.
func UnsquashUnique(s string) (*ddl.Unique, error) {
	f, err := fields(s, 3, "unique constraint")
	if err != nil {
		return nil, err
	}
	cols, err := splitList(f[1])
	if err != nil {
		return nil, err
	}
	return &ddl.Unique{Name: f[0], Columns: cols, NullsNotDistinct: parseBool(f[2])}, nil
}

// Check encodes a check constraint as name;value.
func Check(ch *ddl.Check) string {
	return join(fieldSep, ch.Name, ch.Value)
}

// UnsquashCheck is the inverse of Check.
func UnsquashCheck(s string) (*ddl.Check, error) {
	f, err := fields(s, 2, "check constraint")
	if err != nil {
		return nil, err
	}
	return &ddl.Check{Name: f[0], Value: f[1]}, nil
}

// Policy encodes a policy as name;as;for;to;using;withCheck;on.
func Policy(p *ddl.Policy) string {
	return join(fieldSep, p.Name, p.As, p.For, joinList(p.To), p.Using, p.WithCheck, p.On)
}

// UnsquashPolicy is the inverse of Policy.
func UnsquashPolicy(s string) (*ddl.Policy, error) {
	f, err := fields(s, 7, "policy")
	if err != nil {
		return nil, err
	}
	to, err := splitList(f[3])
	if err != nil {
		return nil, err
	}
	return &ddl.Policy{Name: f[0], As: f[1], For: f[2], To: to, Using: f[4], WithCheck: f[5], On: f[6]}, nil
}

// Sequence encodes a sequence as
// name;schema;increment;minValue;maxValue;startWith;cache;cycle.
func Sequence(seq *ddl.Sequence) string {
	return join(fieldSep, append([]string{seq.Name, seq.Schema}, options(seq.SequenceOptions)...)...)
}

// UnsquashSequence is the inverse of Sequence.
func UnsquashSequence(s string) (*ddl.Sequence, error) {
	f, err := fields(s, 8, "sequence")
	if err != nil {
		return nil, err
	}
	return &ddl.Sequence{Name: f[0], Schema: f[1], SequenceOptions: parseOptions(f[2:])}, nil
}

// Identity encodes an identity as
// type;name;schema;increment;minValue;maxValue;startWith;cache;cycle.
func Identity(id *ddl.Identity) string {
	return join(fieldSep, append([]string{id.Type, id.Name, id.Schema}, options(id.SequenceOptions)...)...)
}

// UnsquashIdentity is the inverse of Identity.
func UnsquashIdentity(s string) (*ddl.Identity, error) {
	f, err := fields(s, 9, "identity")
	if err != nil {
		return nil, err
	}
	return &ddl.Identity{Type: f[0], Name: f[1], Schema: f[2], SequenceOptions: parseOptions(f[3:])}, nil
}

func options(o ddl.SequenceOptions) []string {
	return []string{o.Increment, o.MinValue, o.MaxValue, o.StartWith, o.Cache, formatBool(o.Cycle)}
}

func parseOptions(f []string) ddl.SequenceOptions {
	return ddl.SequenceOptions{
		Increment: f[0],
		MinValue:  f[1],
		MaxValue:  f[2],
		StartWith: f[3],
		Cache:     f[4],
		Cycle:     parseBool(f[5]),
	}
}

func fields(s string, n int, what string) ([]string, error) {
	f, err := split(s, fieldSep)
	if err != nil {
		return nil, err
	}
	if len(f) != n {
		return nil, fmt.Errorf("%w: %s %q has %d fields, want %d", ErrMalformed, what, s, len(f), n)
	}
	return f, nil
}

func join(sep byte, parts ...string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(sep)
		}
		for j := 0; j < len(p); j++ {
			if p[j] == escapeChar || p[j] == sep {
				b.WriteByte(escapeChar)
			}
			b.WriteByte(p[j])
		}
	}
	return b.String()
}

func split(s string, sep byte) ([]string, error) {
	var (
		parts []string
		b     strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case escapeChar:
			i++
			if i == len(s) {
				return nil, fmt.Errorf("%w: dangling escape in %q", ErrMalformed, s)
			}
			b.WriteByte(s[i])
		case sep:
			parts = append(parts, b.String())
			b.Reset()
		default:
			b.WriteByte(s[i])
		}
	}
	return append(parts, b.String()), nil
}

func joinList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return join(listSep, items...)
}

func splitList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	return split(s, listSep)
}

func joinMap(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	items := make([]string, len(keys))
	for i, k := range keys {
		items[i] = join(pairSep, k, m[k])
	}
	return joinList(items)
}

func splitMap(s string) (map[string]string, error) {
	items, err := splitList(s)
	if err != nil || items == nil {
		return nil, err
	}
	m := make(map[string]string, len(items))
	for _, item := range items {
		kv, err := split(item, pairSep)
		if err != nil {
			return nil, err
		}
		if len(kv) != 2 {
			return nil, fmt.Errorf("%w: pair %q", ErrMalformed, item)
		}
		m[kv[0]] = kv[1]
	}
	return m, nil
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
