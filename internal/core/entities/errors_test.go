package entities

import "testing"

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Kind: "protocol", Name: "release"}
	want := `protocol "release" not found`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDuplicateError(t *testing.T) {
	err := &DuplicateError{Kind: "context", Name: "payments"}
	want := `context "payments" already exists`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPermissionDeniedError(t *testing.T) {
	err := &PermissionDeniedError{Reason: "cannot delete a built-in protocol"}
	want := "permission denied: cannot delete a built-in protocol"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestMalformedContentError(t *testing.T) {
	err := &MalformedContentError{Path: "ctx.architecture.xml", Detail: "unclosed tag"}
	want := "malformed content at ctx.architecture.xml: unclosed tag"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFileSystemError_Unwrap(t *testing.T) {
	cause := &NotFoundError{Kind: "file", Name: "meta_rules.xml"}
	err := &FileSystemError{Op: "read", Path: "meta_rules.xml", Cause: cause}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the wrapped cause")
	}
	want := `read meta_rules.xml: file "meta_rules.xml" not found`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestInvalidNameError(t *testing.T) {
	err := &InvalidNameError{Raw: "!!!"}
	want := `invalid name: "!!!" sanitizes to empty identifier`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestConfigMissingError(t *testing.T) {
	err := &ConfigMissingError{Key: "editor"}
	want := "configuration missing: editor"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
