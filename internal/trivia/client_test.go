package trivia

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"trivia-party-service/internal/domain"
)

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("amount"); got != "50" {
			t.Errorf("amount = %q, want 50", got)
		}
		if got := r.URL.Query().Get("difficulty"); got != "easy" {
			t.Errorf("difficulty = %q, want easy", got)
		}
		if got := r.URL.Query().Get("type"); got != "multiple" {
			t.Errorf("type = %q, want multiple", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"response_code": 0,
			"results": [
				{"question": "Q1", "type": "multiple", "correct_answer": "a", "incorrect_answers": ["b", "c", "d"]},
				{"question": "Q2", "type": "multiple", "correct_answer": "x", "incorrect_answers": ["y", "z", "w"]}
			]
		}`))
	}))
	defer srv.Close()

	qs, err := NewClient(srv.URL).Fetch(context.Background(), 50, "easy")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(qs) != 2 || qs[0].Question != "Q1" || qs[1].CorrectAnswer != "x" {
		t.Fatalf("questions = %+v", qs)
	}
	if len(qs[0].IncorrectAnswers) != 3 {
		t.Fatalf("incorrect answers = %+v", qs[0].IncorrectAnswers)
	}
}

func TestFetchProviderErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response_code": 1, "results": []}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Fetch(context.Background(), 50, "easy"); !errors.Is(err, ErrProviderCode) {
		t.Fatalf("err = %v, want ErrProviderCode", err)
	}
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Fetch(context.Background(), 50, "easy"); !errors.Is(err, ErrProviderStatus) {
		t.Fatalf("err = %v, want ErrProviderStatus", err)
	}
}

func TestFetchEmptyBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response_code": 0, "results": []}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Fetch(context.Background(), 50, "easy"); !errors.Is(err, domain.ErrEmptyQuestionSet) {
		t.Fatalf("err = %v, want ErrEmptyQuestionSet", err)
	}
}
