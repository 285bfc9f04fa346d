package percent_test

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/adamwoolhether/apiconn/client/charset"
	"github.com/adamwoolhether/apiconn/client/percent"
	"github.com/adamwoolhether/apiconn/internal/layered"
)

func TestEncoder_Encode(t *testing.T) {
	testCases := []struct {
		name     string
		settings percent.Settings
		in       string
		exp      string
	}{
		{name: "unreserved untouched", in: "AZaz09-._~", exp: "AZaz09-._~"},
		{name: "space escaped by default", in: "x y", exp: "x%20y"},
		{name: "delimiters escaped", in: "a=b&c?d/e", exp: "a%3Db%26c%3Fd%2Fe"},
		{name: "query sub-delims kept", in: "a!$'()*+,;:@b", exp: "a!$'()*+,;:@b"},
		{name: "multi-byte utf-8", in: "é", exp: "%C3%A9"},
		{name: "percent sign", in: "100%", exp: "100%25"},
		{
			name:     "space as plus escapes literal plus",
			settings: percent.Settings{SpaceAsPlus: layered.Ptr(true)},
			in:       "a b+c",
			exp:      "a+b%2Bc",
		},
		{
			name:     "lower hex",
			settings: percent.Settings{LowerHex: layered.Ptr(true)},
			in:       "é ",
			exp:      "%c3%a9%20",
		},
		{
			name:     "strict rfc3986",
			settings: percent.Settings{Unreserved: layered.Ptr(percent.RFC3986)},
			in:       "a@b",
			exp:      "a%40b",
		},
		{
			name:     "shift_jis",
			settings: percent.Settings{Charset: layered.Ptr(charset.MustLookup("shift_jis"))},
			in:       "a日",
			exp:      "a%93%FA",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := percent.New(tc.settings).Encode(tc.in)
			if got != tc.exp {
				t.Errorf("expected %q, got %q", tc.exp, got)
			}
		})
	}
}

func TestEncoder_UnreservedIdentity(t *testing.T) {
	enc := percent.Default()
	for i := 0; i < len(percent.Query); i++ {
		s := percent.Query[i : i+1]
		if got := enc.Encode(s); got != s {
			t.Errorf("expected %q unescaped, got %q", s, got)
		}
	}
}

func TestEncoder_Decode(t *testing.T) {
	testCases := []struct {
		name     string
		settings percent.Settings
		in       string
		exp      string
		expErr   bool
	}{
		{name: "plain", in: "abc", exp: "abc"},
		{name: "escaped space", in: "x%20y", exp: "x y"},
		{name: "plus kept without option", in: "a+b", exp: "a+b"},
		{name: "plus as space", settings: percent.Settings{SpaceAsPlus: layered.Ptr(true)}, in: "a+b", exp: "a b"},
		{name: "multi-byte run", in: "%E6%97%A5%E6%9C%AC", exp: "日本"},
		{name: "mixed case hex", in: "%c3%A9", exp: "é"},
		{name: "non-ascii verbatim", in: "é%20", exp: "é "},
		{name: "truncated escape", in: "%2", expErr: true},
		{name: "lone percent", in: "abc%", expErr: true},
		{name: "invalid hex", in: "%ZZ", expErr: true},
		{name: "shift_jis run", settings: percent.Settings{Charset: layered.Ptr(charset.MustLookup("shift_jis"))}, in: "%93%FA", exp: "日"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := percent.New(tc.settings).Decode(tc.in)
			if tc.expErr {
				var de *percent.DecodeError
				if !errors.As(err, &de) {
					t.Fatalf("expected DecodeError, got: %v", err)
				}
				if !errors.Is(err, percent.ErrMalformedEscape) {
					t.Errorf("expected ErrMalformedEscape, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if got != tc.exp {
				t.Errorf("expected %q, got %q", tc.exp, got)
			}
		})
	}
}

func FuzzEncoder_RoundTrip(f *testing.F) {
	for _, seed := range []string{"", "x y", "a+b", "100%", "日本語", "a=b&c=d", "~!*'()"} {
		f.Add(seed, false)
		f.Add(seed, true)
	}

	f.Fuzz(func(t *testing.T, s string, plus bool) {
		if !utf8.ValidString(s) {
			t.Skip()
		}

		enc := percent.New(percent.Settings{SpaceAsPlus: &plus})
		got, err := enc.Decode(enc.Encode(s))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got != s {
			t.Errorf("expected %q, got %q", s, got)
		}
	})
}

func TestEncoder_EncodePairs(t *testing.T) {
	got := percent.Default().EncodePairs([]percent.Pair{
		{Key: "b", Value: "x y"},
		{Key: "a&", Value: "1=2"},
	})

	if exp := "b=x%20y&a%26=1%3D2"; got != exp {
		t.Errorf("expected %q, got %q", exp, got)
	}
}

func TestResolve(t *testing.T) {
	session := percent.Settings{SpaceAsPlus: layered.Ptr(true), LowerHex: layered.Ptr(true)}
	callSite := percent.Settings{LowerHex: layered.Ptr(false)}

	s := percent.Resolve(callSite, session)
	if !*s.SpaceAsPlus {
		t.Error("expected session SpaceAsPlus to apply")
	}
	if *s.LowerHex {
		t.Error("expected call-site LowerHex to win")
	}
	if *s.Unreserved != percent.Query {
		t.Errorf("expected default unreserved set, got %q", *s.Unreserved)
	}
	if s.Charset.Name() != "UTF-8" {
		t.Errorf("expected UTF-8, got %q", s.Charset.Name())
	}
}
