package dedup

import (
	"strings"
	"testing"
)

func msg(text string, line int) Message {
	return Message{Text: text, Line: line}
}

func TestCollapseEmpty(t *testing.T) {
	d := New(Config{})
	if result := d.Collapse(nil); result != nil {
		t.Fatalf("expected nil, got %v", result)
	}
}

func TestCollapseNoDuplicates(t *testing.T) {
	d := New(Config{})
	result := d.Collapse([]Message{
		msg("ValueError: bad input", 1),
		msg("KeyError: 'id'", 5),
		msg("TimeoutError: read timed out", 9),
	})
	if len(result) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(result))
	}
	for _, g := range result {
		if g.Count != 1 {
			t.Fatalf("expected Count=1, got %d", g.Count)
		}
		if g.String() != g.Text {
			t.Fatalf("single group should render verbatim, got %q", g.String())
		}
	}
}

func TestCollapseSimple(t *testing.T) {
	d := New(Config{})
	var msgs []Message
	for i := 0; i < 5; i++ {
		msgs = append(msgs, msg("ConnectionError: refused", 10+i*3))
	}

	result := d.Collapse(msgs)
	if len(result) != 1 {
		t.Fatalf("expected 1 group, got %d", len(result))
	}
	if result[0].Count != 5 {
		t.Fatalf("expected Count=5, got %d", result[0].Count)
	}
	if got := result[0].String(); got != "ConnectionError: refused (x5, lines 10-22)" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestCollapseMixed(t *testing.T) {
	d := New(Config{})
	result := d.Collapse([]Message{
		msg("error: request 1001 failed", 1), // A
		msg("warning: slow disk", 2),         // B
		msg("error: request 1002 failed", 3), // A
		msg("error: request 1003 failed", 4), // A
		msg("warning: slow disk", 5),         // B
	})
	if len(result) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(result))
	}
	if result[0].Count != 3 || result[0].Text != "error: request 1001 failed" {
		t.Fatalf("first group: expected first text x3, got %+v", result[0])
	}
	if result[1].Count != 2 || result[1].LastLine != 5 {
		t.Fatalf("second group: expected x2 ending at line 5, got %+v", result[1])
	}
}

func TestCollapseWindow(t *testing.T) {
	d := New(Config{Window: 10})
	result := d.Collapse([]Message{
		msg("panic: nil map", 1),
		msg("panic: nil map", 8),
		msg("panic: nil map", 50), // outside window, new group
	})
	if len(result) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(result))
	}
	if result[0].Count != 2 || result[1].FirstLine != 50 {
		t.Fatalf("unexpected groups %+v", result)
	}
}

func TestKey(t *testing.T) {
	a := Key("Timeout after 30s on conn 0x7ffee3b1")
	b := Key("Timeout  after 31s on conn 0x7ffee3c9 ")
	if a != b {
		t.Fatalf("expected equal keys, got %q and %q", a, b)
	}
	if strings.Contains(a, "30") {
		t.Fatalf("numbers should be normalized: %q", a)
	}
	if Key("disk full") == Key("disk empty") {
		t.Fatal("different messages must not share a key")
	}
}
