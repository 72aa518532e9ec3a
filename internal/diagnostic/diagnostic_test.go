package diagnostic

import "testing"

func TestSinkFormatsMessage(t *testing.T) {
	s := New("test.fx", "float4 f(float x){return x;}\n")
	s.Errorf(0, X3004, "undeclared identifier '%s'", "vs")
	if !s.HasErrors() {
		t.Fatalf("expected HasErrors true")
	}
	got := s.String()
	want := "test.fx(1, 1): error X3004: undeclared identifier 'vs'\n"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestWarningsDoNotSetHasErrors(t *testing.T) {
	s := New("", "int a;\n")
	s.Warnf(0, X5000, "implicit uniform")
	if s.HasErrors() {
		t.Errorf("expected HasErrors false after only a warning")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestMessagesOrderIsEmissionOrder(t *testing.T) {
	s := New("", "a\nb\nc\n")
	s.Errorf(0, X3000, "first")
	s.Errorf(2, X3000, "second")
	s.Errorf(4, X3000, "third")
	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Line < msgs[i-1].Line {
			t.Errorf("messages out of order at %d", i)
		}
	}
}
