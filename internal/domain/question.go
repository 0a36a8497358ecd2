package domain

import "errors"

var ErrEmptyQuestionSet = errors.New("empty question set")

// Question mirrors the Open Trivia DB wire shape so a fetched batch can be
// proposed to a room without reshaping.
type Question struct {
	Question         string   `json:"question"`
	Type             string   `json:"type"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// QuestionSet is the ordered sequence a room plays through in one round.
// Once a set becomes canonical for a round it is never mutated.
type QuestionSet []Question

// Clone returns an independent copy so the canonical set cannot be
// mutated through the proposer's slice.
func (qs QuestionSet) Clone() QuestionSet {
	if qs == nil {
		return nil
	}
	out := make(QuestionSet, len(qs))
	copy(out, qs)
	return out
}
