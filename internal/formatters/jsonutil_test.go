package formatters

import "testing"

func TestOrderedJSONPreservesInsertionOrder(t *testing.T) {
	o := newOrderedJSON()
	o.String("b", "2")
	o.String("a", "1")
	o.Int("n", 3)
	o.Bool("t", true)
	got := o.String_()
	want := `{"b":"2","a":"1","n":3,"t":true}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestJSONEscapeStringBasic(t *testing.T) {
	if got := jsonEscapeString("plain"); got != `"plain"` {
		t.Errorf("got %s", got)
	}
	if got := jsonEscapeString("a\"b"); got != `"a\"b"` {
		t.Errorf("got %s", got)
	}
	if got := jsonEscapeString("a\\b"); got != `"a\\b"` {
		t.Errorf("got %s", got)
	}
	if got := jsonEscapeString("line1\nline2"); got != `"line1\nline2"` {
		t.Errorf("got %s", got)
	}
	if got := jsonEscapeString("tab\there"); got != `"tab\there"` {
		t.Errorf("got %s", got)
	}
}

func TestJSONEscapeStringControlChar(t *testing.T) {
	got := jsonEscapeString("\x01")
	want := `""`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestJSONEscapeStringUTF8PassesThrough(t *testing.T) {
	got := jsonEscapeString("café")
	want := `"café"`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestTryNumericOrBool(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{"true", "true", true},
		{"false", "false", true},
		{"42", "42", true},
		{"-7", "-7", true},
		{"3.5", "3.5", true},
		{"not-a-number", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := tryNumericOrBool(c.in)
		if ok != c.wantOk {
			t.Errorf("tryNumericOrBool(%q) ok = %v, want %v", c.in, ok, c.wantOk)
			continue
		}
		if ok && got != c.want {
			t.Errorf("tryNumericOrBool(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNumericJSONLiteralLargeFloat(t *testing.T) {
	got := numericJSONLiteral(1.5e20, false, 0)
	if got != "1.5e+20" {
		t.Errorf("numericJSONLiteral(1.5e20) = %s, want 1.5e+20", got)
	}
}
