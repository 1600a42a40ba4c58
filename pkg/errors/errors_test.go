package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidName, "invalid document name: %s", "a/b")
	want := `INVALID_NAME: invalid document name: a/b`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := Wrap(ErrCodeMalformedXML, cause, "decode %s", "sketch")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause lost from the chain")
	}
	want := "MALFORMED_XML: decode sketch: unexpected EOF"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := New(ErrCodeDocumentNotFound, "no such document")
	wrapped := fmt.Errorf("handling request: %w", err)

	if !Is(wrapped, ErrCodeDocumentNotFound) {
		t.Error("Is should match through wrapping")
	}
	if Is(wrapped, ErrCodeMalformedXML) {
		t.Error("Is matched the wrong code")
	}
	if Is(stderrors.New("plain"), ErrCodeNotFound) {
		t.Error("Is matched a plain error")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeLocked, "locked")); got != ErrCodeLocked {
		t.Errorf("GetCode = %q", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidStyle, "unbalanced escape in style")
	if got := UserMessage(err); got != "unbalanced escape in style" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestValidateDocumentName(t *testing.T) {
	valid := []string{"sketch", "team-roadmap", "Q3_plan", "arch.v2"}
	for _, name := range valid {
		if err := ValidateDocumentName(name); err != nil {
			t.Errorf("ValidateDocumentName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		".hidden",
		"../escape",
		"a/b",
		"a\\b",
		"null\x00byte",
		"ctl\x07char",
		string(make([]byte, 129)),
	}
	for _, name := range invalid {
		err := ValidateDocumentName(name)
		if err == nil {
			t.Errorf("ValidateDocumentName(%q) = nil, want error", name)
			continue
		}
		if !Is(err, ErrCodeInvalidName) {
			t.Errorf("ValidateDocumentName(%q) code = %q", name, GetCode(err))
		}
	}
}
