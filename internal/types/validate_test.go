package types

import (
	"errors"
	"strings"
	"testing"
)

func validProject() ProjectDescription {
	return ProjectDescription{
		Description: "Build a cloud data platform with streaming ingestion and analytics.",
		ClientName:  "Acme Corp",
	}
}

func TestProjectDescriptionValidate(t *testing.T) {
	if err := validProject().Validate(); err != nil {
		t.Fatalf("valid project rejected: %v", err)
	}

	p := validProject()
	p.Description = "too short"
	err := p.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "description" {
		t.Fatalf("expected description field, got %q", verr.Field)
	}

	p = validProject()
	p.ClientName = " x "
	err = p.Validate()
	if !errors.As(err, &verr) || verr.Field != "client_name" {
		t.Fatalf("expected client_name error, got %v", err)
	}
}

func TestValidateDocuments(t *testing.T) {
	docs := []ReferenceDocument{
		{Kind: KindPDF, Filename: "a.pdf", Content: []byte("x")},
		{Kind: KindSlideDeck, Filename: "b.pptx", Content: []byte("x")},
	}
	if err := ValidateDocuments(docs); err != nil {
		t.Fatalf("valid documents rejected: %v", err)
	}

	six := make([]ReferenceDocument, MaxReferenceDocuments+1)
	for i := range six {
		six[i] = ReferenceDocument{Kind: KindPDF, Filename: "d.pdf", Content: []byte("x")}
	}
	if err := ValidateDocuments(six); err == nil {
		t.Fatal("expected error for too many documents")
	}

	err := ValidateDocuments([]ReferenceDocument{{Kind: "docx", Filename: "c.docx", Content: []byte("x")}})
	if err == nil || !strings.Contains(err.Error(), "docx") {
		t.Fatalf("expected unsupported kind error, got %v", err)
	}

	err = ValidateDocuments([]ReferenceDocument{{Kind: KindPDF, Filename: "empty.pdf"}})
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected empty content error, got %v", err)
	}
}

func TestValidationErrorIsValidation(t *testing.T) {
	err := validProjectError()
	if !IsValidation(err) {
		t.Fatal("expected IsValidation true")
	}
	if IsValidation(errors.New("other")) {
		t.Fatal("expected IsValidation false for plain error")
	}
}

func validProjectError() error {
	p := validProject()
	p.ClientName = ""
	return p.Validate()
}
