package proctor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/interview-client/internal/model"
)

func TestBootstrap_ResumeIndex(t *testing.T) {
	cases := []struct {
		name     string
		answered []int
		want     int
	}{
		{"none answered", nil, 0},
		{"first two answered", []int{0, 1}, 2},
		{"gap in the middle", []int{0, 2}, 1},
		{"all answered stays on last", []int{0, 1, 2, 3}, 3},
		{"whitespace answer counts as unanswered", []int{-1}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set := questionSet(4)
			for _, i := range tc.answered {
				if i == -1 {
					set.Questions[0].Answer = "   "
					continue
				}
				set.Questions[i].Answer = "done"
			}
			fb := &fakeBackend{questions: set}

			sess, err := Bootstrap(context.Background(), fb, "iv-1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, sess.CurrentIndex)
		})
	}
}

func TestBootstrap_RestoresAnswers(t *testing.T) {
	set := questionSet(3)
	set.Questions[0].Answer = "previous answer"
	fb := &fakeBackend{questions: set}

	sess, err := Bootstrap(context.Background(), fb, "iv-1")
	require.NoError(t, err)

	assert.Equal(t, "previous answer", sess.Answers["q1"])
	assert.True(t, sess.Answered(0))
	assert.False(t, sess.Answered(1))
	assert.Equal(t, 30*60, sess.TimeRemainingSeconds)
	assert.Equal(t, "Backend Engineer", sess.JobTitle)
}

func TestBootstrap_FetchFailure(t *testing.T) {
	fb := &fakeBackend{questionsErr: errors.New("503 from upstream")}

	sess, err := Bootstrap(context.Background(), fb, "iv-1")
	require.Error(t, err)
	assert.Nil(t, sess)
}

func TestSessionAnswered_OutOfRange(t *testing.T) {
	sess := newSession("iv-1", &model.QuestionSet{
		JobTitle: "x", DurationMinutes: 5,
		Questions: []model.Question{{ID: "q1", Question: "?"}},
	})
	assert.False(t, sess.Answered(-1))
	assert.False(t, sess.Answered(1))
}
