package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSurveyRecipientsSplitsAndTrims(t *testing.T) {
	survey := Survey{EmailAddress: " lab@example.org ;; pi@example.org;"}
	require.Equal(t, []string{"lab@example.org", "pi@example.org"}, survey.Recipients())

	require.Empty(t, Survey{}.Recipients())
}

func TestPageExpectsArea(t *testing.T) {
	page := Page{Expectations: []Expectation{{AreaID: 3}, {AreaID: 7}}}

	require.True(t, page.ExpectsArea(7))
	require.False(t, page.ExpectsArea(4))
	require.False(t, Page{}.ExpectsArea(3))
}

func TestSubjectBirthDate(t *testing.T) {
	subject := Subject{Birth: time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC)}
	require.Equal(t, "2000-01-02", subject.BirthDate())
}

func TestPageActionVariants(t *testing.T) {
	actions := []PageAction{&Fill{Time: 1500}, &Action{Time: 2000, Name: "resume"}}

	var fills, others int
	for _, action := range actions {
		switch action.(type) {
		case *Fill:
			fills++
		case *Action:
			others++
		}
	}

	require.Equal(t, 1, fills)
	require.Equal(t, 1, others)
	require.Equal(t, 1500, actions[0].Millis())
	require.Equal(t, 2000, actions[1].Millis())
}
