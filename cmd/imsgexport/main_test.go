package main

import (
	"testing"
	"time"
)

func TestVersionInfo(t *testing.T) {
	// Basic sanity check that version vars are set
	if version == "" {
		t.Error("version should not be empty")
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2022-06-01")
	if err != nil {
		t.Fatalf("Failed to parse date: %v", err)
	}
	want := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestParseDate_Empty(t *testing.T) {
	got, err := parseDate("")
	if err != nil {
		t.Fatalf("Expected empty date to be accepted: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("Expected zero time for unbounded side, got %v", got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	if _, err := parseDate("06/01/2022"); err == nil {
		t.Error("Expected error for non-ISO date")
	}
}
