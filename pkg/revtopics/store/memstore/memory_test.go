package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/revtopics/pkg/revtopics/aggregate"
	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
	"github.com/cognicore/revtopics/pkg/revtopics/lda"
	"github.com/cognicore/revtopics/pkg/revtopics/store"
)

func sampleReport(id string, created time.Time) store.Report {
	return store.Report{
		ID:         id,
		CreatedAt:  created,
		Documents:  3,
		Vocabulary: 5,
		Tokens:     9,
		Terms: []aggregate.TermCount{
			{ID: 0, Token: "great", Count: 3},
			{ID: 1, Token: "book", Count: 2},
		},
		TopicConfig: lda.DefaultConfig(),
		Topics: []lda.Topic{
			{ID: 0, Terms: []lda.TermWeight{{Term: 0, Token: "great", Prob: 0.5}}},
		},
		DominantTopics: []int{0, 0, -1},
		Ratings:        []aggregate.EntityMean{{Key: "A", Mean: 3, N: 2}},
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	r := sampleReport("r1", time.Now())
	if err := s.SaveReport(ctx, r); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	got, err := s.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Documents != 3 || len(got.Terms) != 2 || got.Topics[0].Terms[0].Token != "great" {
		t.Errorf("GetReport = %+v", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := sampleReport("r1", time.Now())
	if err := s.SaveReport(ctx, r); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	r.Terms[0].Count = 99

	got, _ := s.GetReport(ctx, "r1")
	got.Topics[0].Terms[0].Prob = 0
	again, _ := s.GetReport(ctx, "r1")

	if again.Terms[0].Count != 3 {
		t.Error("stored report changed through the caller's slice")
	}
	if again.Topics[0].Terms[0].Prob != 0.5 {
		t.Error("stored report changed through a returned slice")
	}
}

func TestGetMissing(t *testing.T) {
	_, err := New().GetReport(context.Background(), "nope")
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("GetReport error = %v, want ErrNotFound", err)
	}
}

func TestSaveWithoutID(t *testing.T) {
	err := New().SaveReport(context.Background(), store.Report{})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("SaveReport error = %v, want ErrInvalidInput", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := s.SaveReport(ctx, sampleReport(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}

	all, err := s.ListReports(ctx, 0)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("ListReports(0) = %+v", all)
	}

	two, _ := s.ListReports(ctx, 2)
	if len(two) != 2 || two[0].ID != "c" || two[1].ID != "b" {
		t.Errorf("ListReports(2) = %+v", two)
	}
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := s.SaveReport(ctx, sampleReport("x", time.Now())); !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("SaveReport after Close = %v", err)
	}
	if _, err := s.GetReport(ctx, "x"); !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("GetReport after Close = %v", err)
	}
	if _, err := s.ListReports(ctx, 1); !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("ListReports after Close = %v", err)
	}
}

var _ store.Store = (*Store)(nil)
