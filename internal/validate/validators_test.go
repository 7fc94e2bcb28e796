package validate

import "testing"

func TestReservedNames(t *testing.T) {
	v := NewReservedNames(DefaultReservedNames())

	for _, name := range []string{"admin", "localhost", "noreply", "robots.txt", "signup", ".well-known", ".well-known/acme-challenge"} {
		if err := v.Validate("username", name); err == nil {
			t.Errorf("expected %q to be reserved", name)
		} else if err.Code != CodeReservedName {
			t.Errorf("expected code %q for %q, got %q", CodeReservedName, name, err.Code)
		}
	}

	for _, name := range []string{"alice", "bob42", "well-known"} {
		if err := v.Validate("username", name); err != nil {
			t.Errorf("expected %q to be allowed, got %v", name, err)
		}
	}
}

func TestReservedNames_CustomList(t *testing.T) {
	v := NewReservedNames([]string{"ceo"})

	if err := v.Validate("username", "ceo"); err == nil {
		t.Fatalf("expected custom reserved name to be rejected")
	}
	// Stock names do not apply when a custom list is supplied.
	if err := v.Validate("username", "admin"); err != nil {
		t.Fatalf("expected stock name to pass under custom list, got %v", err)
	}
}

func TestConfusables(t *testing.T) {
	// Mixed-script lookalike of "google": Latin plus "ó" keeps it single
	// script, so use a Cyrillic/Latin mix that the oracle flags.
	if err := Confusables("username", "gооgle"); err == nil {
		t.Errorf("expected mixed-script confusable username to be rejected")
	} else if err.Code != CodeConfusable {
		t.Errorf("expected code %q, got %q", CodeConfusable, err.Code)
	}

	for _, name := range []string{"google", "alice", "góógle"} {
		if err := Confusables("username", name); err != nil {
			t.Errorf("expected %q to pass, got %v", name, err)
		}
	}
}

func TestConfusablesEmail(t *testing.T) {
	if err := ConfusablesEmail("email", "gооgle@example.com"); err == nil {
		t.Errorf("expected confusable local part to be rejected")
	} else if err.Code != CodeConfusableEmail {
		t.Errorf("expected code %q, got %q", CodeConfusableEmail, err.Code)
	}

	if err := ConfusablesEmail("email", "alice@gооgle.com"); err == nil {
		t.Errorf("expected confusable domain to be rejected")
	}

	// Not an addr-spec: accepted here, rejected by the Email validator.
	if err := ConfusablesEmail("email", "not-an-address"); err != nil {
		t.Errorf("expected non-addr-spec value to pass untouched, got %v", err)
	}

	if err := ConfusablesEmail("email", "alice@example.com"); err != nil {
		t.Errorf("expected plain address to pass, got %v", err)
	}
}

func TestEmail(t *testing.T) {
	for _, addr := range []string{"alice@example.com", "a.b+c@sub.example.org"} {
		if err := Email("email", addr); err != nil {
			t.Errorf("expected %q to be valid, got %v", addr, err)
		}
	}

	for _, addr := range []string{"", "plain", "a@b@c", "alice@", "@example.com", "alice@-example.com"} {
		if err := Email("email", addr); err == nil {
			t.Errorf("expected %q to be invalid", addr)
		}
	}
}

func TestFreeEmailDomains(t *testing.T) {
	v := NewFreeEmailDomains([]string{"mailinator.com"})

	if err := v.Validate("email", "spam@MAILINATOR.com"); err == nil {
		t.Fatalf("expected blocked domain to be rejected case-insensitively")
	} else if err.Code != CodeFreeEmailDomain {
		t.Fatalf("expected code %q, got %q", CodeFreeEmailDomain, err.Code)
	}

	if err := v.Validate("email", "alice@example.com"); err != nil {
		t.Fatalf("expected unblocked domain to pass, got %v", err)
	}

	empty := NewFreeEmailDomains(nil)
	if err := empty.Validate("email", "spam@mailinator.com"); err != nil {
		t.Fatalf("expected empty block list to accept everything, got %v", err)
	}
}

func TestFold(t *testing.T) {
	if Fold("Alice") != Fold("ALICE") {
		t.Fatalf("expected case-insensitive equality after folding")
	}
	// NFKC folds compatibility forms: fullwidth letters collapse to ASCII.
	if Fold("ＡＬＩＣＥ") != Fold("alice") {
		t.Fatalf("expected NFKC-compatible forms to fold together")
	}
	if Fold("straße") != Fold("STRASSE") {
		t.Fatalf("expected case folding to handle sharp s")
	}
}

func TestErrorsCollect(t *testing.T) {
	var errs Errors
	errs.Add(nil)
	errs.Add(&FieldError{Field: "username", Code: CodeReservedName, Message: "reserved"})
	errs.Add(&FieldError{Field: "email", Code: CodeInvalidEmail, Message: "invalid"})

	if len(errs) != 2 {
		t.Fatalf("expected 2 collected errors, got %d", len(errs))
	}
	if errs.Error() == "" {
		t.Fatalf("expected combined error string")
	}
}
