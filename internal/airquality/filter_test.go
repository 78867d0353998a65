package airquality

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seriesOf(start string, values ...float64) TimeSeries {
	base := day(start)
	s := make(TimeSeries, len(values))
	for i, v := range values {
		s[i] = Reading{Date: base.AddDate(0, 0, i), Value: v}
	}
	return s
}

func TestFilterSeriesInclusiveBounds(t *testing.T) {
	s := seriesOf("2024-03-01", 1, 2, 3, 4, 5)
	r := DateRange{Start: day("2024-03-02"), End: day("2024-03-04")}

	got := FilterSeries(s, r)
	if len(got) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(got))
	}
	if got[0].Value != 2 || got[2].Value != 4 {
		t.Fatalf("bounds not inclusive: %v", got.Values())
	}
}

func TestFilterSeriesInvertedRangeIsEmpty(t *testing.T) {
	s := seriesOf("2024-03-01", 1, 2, 3)
	r := DateRange{Start: day("2024-03-03"), End: day("2024-03-01")}

	if got := FilterSeries(s, r); len(got) != 0 {
		t.Fatalf("expected empty series for inverted range, got %d readings", len(got))
	}
}

func TestFilterSeriesFullRangeRoundTrip(t *testing.T) {
	s := seriesOf("2024-03-01", 5, 1, 4, 2, 3)
	r := DateRange{Start: s[0].Date, End: s[len(s)-1].Date}

	got := FilterSeries(s, r)
	if len(got) != len(s) {
		t.Fatalf("expected %d readings, got %d", len(s), len(got))
	}
	for i := range s {
		if got[i] != s[i] {
			t.Fatalf("reading %d changed: %v != %v", i, got[i], s[i])
		}
	}
}

func TestFilterSeriesDoesNotMutateInput(t *testing.T) {
	s := seriesOf("2024-03-01", 1, 2, 3)
	orig := make(TimeSeries, len(s))
	copy(orig, s)

	FilterSeries(s, DateRange{Start: day("2024-03-02"), End: day("2024-03-02")})
	for i := range s {
		if s[i] != orig[i] {
			t.Fatalf("input mutated at index %d", i)
		}
	}
}

func TestFilterDocumentOmitsEmptiedRecords(t *testing.T) {
	doc := StationDocument{
		{ID: 1, Values: []ValueEntry{
			{Date: "2024-03-05", Value: fptr(5)},
			{Date: "2024-03-01", Value: fptr(1)},
		}},
		{ID: 2, Values: []ValueEntry{
			{Date: "2024-01-01", Value: fptr(9)},
		}},
		{ID: 3}, // never fetched
	}
	r := DateRange{Start: day("2024-03-01"), End: day("2024-03-31")}

	got := FilterDocument(doc, r)
	if len(got) != 1 {
		t.Fatalf("expected 1 record after filtering, got %d", len(got))
	}
	if got[0].ID != 1 || len(got[0].Values) != 2 {
		t.Fatalf("unexpected filtered record: %+v", got[0])
	}
}

func TestFilterDocumentDropsNullValues(t *testing.T) {
	doc := StationDocument{
		{ID: 1, Values: []ValueEntry{
			{Date: "2024-03-02", Value: nil},
			{Date: "2024-03-01", Value: fptr(1)},
		}},
	}
	r := DateRange{Start: day("2024-03-01"), End: day("2024-03-31")}

	got := FilterDocument(doc, r)
	if len(got) != 1 || len(got[0].Values) != 1 {
		t.Fatalf("expected single surviving entry, got %+v", got)
	}
	if got[0].Values[0].Date != "2024-03-01" {
		t.Fatalf("wrong entry survived: %+v", got[0].Values[0])
	}
}
