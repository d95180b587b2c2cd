package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeExtractionFailure, "no usable symbol data")
		if err.Error() != "[EXTRACTION_FAILURE] no usable symbol data" {
			t.Errorf("expected [EXTRACTION_FAILURE] no usable symbol data, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeSyncListingFailure, "corpus listing failed")
		expected := "[SYNC_LISTING_FAILURE] corpus listing failed: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeSyncItemFailure, "fetch failed")
		if !IsCode(err, CodeSyncItemFailure) {
			t.Error("expected IsCode to return true for CodeSyncItemFailure")
		}
		if IsCode(err, CodeCacheUnavailable) {
			t.Error("expected IsCode to return false for CodeCacheUnavailable")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		if !IsCode(err, CodeInternal) {
			t.Error("expected IsCode to return true for wrapped CodeInternal")
		}
	})

	t.Run("IsSoft", func(t *testing.T) {
		if !IsSoft(New(CodeCacheUnavailable, "store down")) {
			t.Error("expected cache unavailability to be soft")
		}
		if !IsSoft(New(CodeSyncItemFailure, "item fetch failed")) {
			t.Error("expected sync item failure to be soft")
		}
		if IsSoft(New(CodeExtractionFailure, "bad input")) {
			t.Error("extraction failure must not be soft")
		}
		if IsSoft(New(CodeSyncListingFailure, "listing down")) {
			t.Error("listing failure must not be soft")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := New(CodeSyncItemFailure, "fetch failed")
		err = AddContext(err, CtxPath, "profiles/kentik_snmp/cisco/cisco-asa.yml")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected DomainError")
		}
		if de.Context[CtxPath] != "profiles/kentik_snmp/cisco/cisco-asa.yml" {
			t.Errorf("context not attached: %+v", de.Context)
		}
	})
}
