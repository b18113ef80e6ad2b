package protect

import (
	"strings"
	"testing"
)

func TestProtect_PhoneAndDate(t *testing.T) {
	in := "Call me at (212) 555-0199 on 03/04/2024"

	protected, tokens := Protect(in)

	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d: %+v", len(tokens), tokens)
	}
	if tokens[0].Category != CategoryPhone {
		t.Errorf("token 0: expected PHONE, got %s", tokens[0].Category)
	}
	if tokens[0].Original != "(212) 555-0199" {
		t.Errorf("token 0: expected phone original, got %q", tokens[0].Original)
	}
	if tokens[1].Category != CategoryDate {
		t.Errorf("token 1: expected DATE, got %s", tokens[1].Category)
	}
	if strings.Contains(protected, "212") || strings.Contains(protected, "2024") {
		t.Errorf("protected text still contains digits: %q", protected)
	}

	// No-op translation: restoring must return the original unchanged.
	restored, lost := Restore(protected, tokens)
	if restored != in {
		t.Errorf("expected %q, got %q", in, restored)
	}
	if len(lost) != 0 {
		t.Errorf("expected no lost tokens, got %v", lost)
	}
}

func TestProtect_RoundTrip(t *testing.T) {
	cases := []string{
		"",
		"plain text with no entities at all",
		"Revenue grew 14.5% to $1,200,000 in 2023.",
		"Meet at 9:30 AM on 2024-01-15, bring $40.",
		"SSN 078-05-1120 was issued before 1980.",
		"Order 12 units of part 99,100 by Dec 31, 2025.",
		"€ 300 and £45 and ¥1,000",
	}

	for _, in := range cases {
		protected, tokens := Protect(in)
		restored, lost := Restore(protected, tokens)
		if restored != in {
			t.Errorf("round trip changed text:\n in: %q\nout: %q", in, restored)
		}
		if len(lost) != 0 {
			t.Errorf("%q: unexpected lost tokens %v", in, lost)
		}
	}
}

func TestProtect_PlaceholdersUnique(t *testing.T) {
	_, tokens := Protect("1 2 3 4 5 6 7 8 9 10")
	seen := map[string]bool{}
	for _, tok := range tokens {
		if seen[tok.Placeholder] {
			t.Errorf("duplicate placeholder %q", tok.Placeholder)
		}
		seen[tok.Placeholder] = true
	}
}

func TestProtect_CounterSkipsExistingPlaceholders(t *testing.T) {
	// Content that already looks like a placeholder must not be collided with.
	in := "literal ⟦PT3:NUMBER⟧ marker next to 42"
	protected, tokens := Protect(in)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token")
	}
	for _, tok := range tokens {
		if tok.ID <= 3 {
			t.Errorf("token id %d does not skip existing placeholder ids", tok.ID)
		}
	}
	if c := strings.Count(protected, "⟦PT3:NUMBER⟧"); c != 1 {
		t.Errorf("pre-existing marker occurs %d times, want 1", c)
	}
}

func TestProtect_PriorityOrder(t *testing.T) {
	// The year inside a date span belongs to the date token, and the phone
	// pattern outranks the generic number pattern.
	_, tokens := Protect("On 03/04/2024 call 212-555-0199.")
	var cats []Category
	for _, tok := range tokens {
		cats = append(cats, tok.Category)
	}
	want := []Category{CategoryDate, CategoryPhone}
	if len(cats) != len(want) {
		t.Fatalf("expected %v, got %v", want, cats)
	}
	// Tokens are in document order, not priority order.
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("token %d: expected %s, got %s", i, want[i], cats[i])
		}
	}
}

func TestProtect_TimeAndSSNReachable(t *testing.T) {
	_, tokens := Protect("Shift starts 14:30 sharp; file under 078-05-1120.")
	var gotTime, gotSSN bool
	for _, tok := range tokens {
		switch tok.Category {
		case CategoryTime:
			gotTime = true
		case CategorySSN:
			gotSSN = true
		case CategoryNumber:
			t.Errorf("generic number claimed %q from a compound token", tok.Original)
		}
	}
	if !gotTime {
		t.Error("time-of-day not recognized")
	}
	if !gotSSN {
		t.Error("SSN not recognized")
	}
}

func TestRestore_CaseInsensitiveFallback(t *testing.T) {
	protected, tokens := Protect("total $500 due")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	// A provider may fold placeholder casing.
	lowered := strings.ToLower(protected)
	restored, lost := Restore(lowered, tokens)
	if len(lost) != 0 {
		t.Fatalf("expected case-insensitive restore, lost %v", lost)
	}
	if !strings.Contains(restored, "$500") {
		t.Errorf("original not restored: %q", restored)
	}
}

func TestRestore_MangledPlaceholderFlagged(t *testing.T) {
	protected, tokens := Protect("pay $500 now")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	mangled := strings.ReplaceAll(protected, tokens[0].Placeholder, "⟦PT x CURRENCY⟧")
	restored, lost := Restore(mangled, tokens)
	if len(lost) != 1 {
		t.Fatalf("expected 1 lost token, got %d", len(lost))
	}
	if strings.Contains(restored, "$500") {
		t.Errorf("mangled placeholder should not be restored: %q", restored)
	}
}
