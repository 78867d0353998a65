package airquality

import (
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestExtractSeriesReversesToAscending(t *testing.T) {
	// Upstream order: newest first.
	entries := []ValueEntry{
		{Date: "2024-03-03", Value: fptr(30)},
		{Date: "2024-03-02", Value: fptr(20)},
		{Date: "2024-03-01", Value: fptr(10)},
	}

	series := ExtractSeries(entries)
	if len(series) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(series))
	}

	for i := 1; i < len(series); i++ {
		if series[i].Date.Before(series[i-1].Date) {
			t.Fatalf("series not ascending at index %d", i)
		}
	}
	if series[0].Value != 10 || series[2].Value != 30 {
		t.Fatalf("unexpected values after reversal: %v", series.Values())
	}
}

func TestExtractSeriesDropsInvalidEntries(t *testing.T) {
	entries := []ValueEntry{
		{Date: "2024-03-04", Value: fptr(4)},
		{Date: "not-a-date", Value: fptr(3)},
		{Date: "2024-03-02", Value: nil},
		{Date: "2024-03-01", Value: fptr(1)},
	}

	series := ExtractSeries(entries)
	if len(series) != 2 {
		t.Fatalf("expected 2 valid readings, got %d", len(series))
	}
	if series[0].Value != 1 || series[1].Value != 4 {
		t.Fatalf("unexpected values: %v", series.Values())
	}
}

func TestExtractSeriesEmptyInput(t *testing.T) {
	if got := ExtractSeries(nil); len(got) != 0 {
		t.Fatalf("expected empty series, got %d readings", len(got))
	}

	allNull := []ValueEntry{
		{Date: "2024-03-01", Value: nil},
		{Date: "2024-03-02", Value: nil},
	}
	if got := ExtractSeries(allNull); len(got) != 0 {
		t.Fatalf("expected empty series from all-null entries, got %d", len(got))
	}
}

func TestDecodeStationDocument(t *testing.T) {
	raw := []byte(`[
		{"id": 92, "param": {"paramName": "pył zawieszony PM10", "paramCode": "PM10"},
		 "values": [{"date": "2024-03-02", "value": 21.5}, {"date": "2024-03-01", "value": null}]},
		{"id": 93, "param": {"paramName": "dwutlenek azotu", "paramCode": "NO2"}}
	]`)

	doc, err := DecodeStationDocument(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 2 {
		t.Fatalf("expected 2 records, got %d", len(doc))
	}
	if !doc[0].HasReadings() {
		t.Fatal("record 92 should report readings")
	}
	if doc[1].HasReadings() {
		t.Fatal("record 93 was never fetched and should not report readings")
	}

	byID := ExtractDocument(doc)
	if len(byID) != 1 {
		t.Fatalf("expected 1 extracted series, got %d", len(byID))
	}
	if got := byID[92]; len(got) != 1 || got[0].Value != 21.5 {
		t.Fatalf("unexpected series for sensor 92: %v", got)
	}
}

func TestDecodeStationDocumentMalformedTopLevel(t *testing.T) {
	if _, err := DecodeStationDocument([]byte(`{"not": "an array"}`)); err == nil {
		t.Fatal("expected error for non-array document")
	}
}
