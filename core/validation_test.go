package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateMetadata(t *testing.T) {
	valid := &DocumentMetadata{
		SourceType: SourceTypeWiki,
		SourceID:   "98321",
		SourceName: "AWS Budget Policy",
		IngestedAt: time.Now().UTC(),
	}
	if err := ValidateMetadata(valid); err != nil {
		t.Fatalf("Expected valid metadata, got %v", err)
	}

	cases := []struct {
		name string
		meta *DocumentMetadata
		want error
	}{
		{"nil", nil, ErrInvalidMetadata},
		{"unknown source", &DocumentMetadata{SourceType: SourceTypeUnknown, SourceID: "x", IngestedAt: time.Now()}, ErrInvalidSourceType},
		{"empty source id", &DocumentMetadata{SourceType: SourceTypeText, IngestedAt: time.Now()}, ErrEmptySourceID},
		{"missing ingested_at", &DocumentMetadata{SourceType: SourceTypeText, SourceID: "x"}, ErrMissingIngestedAt},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMetadata(tc.meta)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Expected %v in chain, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateRecord(t *testing.T) {
	record := NewIngestionRecord("run-7", SourceTypeChat)
	if err := ValidateRecord(record); err != nil {
		t.Fatalf("Expected valid record, got %v", err)
	}

	// Aggregate runs over mixed origins use the unknown source type.
	mixed := NewIngestionRecord("run-8", SourceTypeUnknown)
	if err := ValidateRecord(mixed); err != nil {
		t.Fatalf("Expected mixed-origin record to validate, got %v", err)
	}

	record.IngestionID = ""
	if err := ValidateRecord(record); !errors.Is(err, ErrEmptyIngestionID) {
		t.Fatalf("Expected ErrEmptyIngestionID, got %v", err)
	}

	bad := NewIngestionRecord("run-9", SourceTypeChat)
	bad.Status = RunStatus("flailing")
	if err := ValidateRecord(bad); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("Expected ErrInvalidStatus, got %v", err)
	}
}
