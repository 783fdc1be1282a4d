// FILE: lixenwraith/stories/collab_test.go
package stories

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestTimeAgo tests relative timestamps against a fixed clock
func TestTimeAgo(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	fixClock(t, clock)

	ago := func(d time.Duration) int64 { return clock.Add(-d).Unix() }

	t.Run("Past", func(t *testing.T) {
		tests := []struct {
			name string
			ts   int64
			want string
		}{
			{"Seconds", ago(30 * time.Second), "30 seconds ago"},
			{"OneMinute", ago(90 * time.Second), "1 minute ago"},
			{"Minutes", ago(5 * time.Minute), "5 minutes ago"},
			{"OneHour", ago(90 * time.Minute), "1 hour ago"},
			{"Hours", ago(3 * time.Hour), "3 hours ago"},
			{"Yesterday", ago(30 * time.Hour), "yesterday"},
			{"Days", ago(3 * 24 * time.Hour), "3 days ago"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, TimeAgo(tt.ts, nil))
			})
		}
	})

	t.Run("Future", func(t *testing.T) {
		assert.Equal(t, "30 seconds from now", TimeAgo(clock.Add(30*time.Second).Unix(), nil))
		assert.Equal(t, "3 hours from now", TimeAgo(clock.Add(3*time.Hour).Unix(), nil))
		assert.Equal(t, "tomorrow", TimeAgo(clock.Add(30*time.Hour).Unix(), nil))
	})

	t.Run("OlderThanAWeek", func(t *testing.T) {
		ts := ago(10 * 24 * time.Hour)
		assert.Equal(t, time.Unix(ts, 0).Format("2006-01-02"), TimeAgo(ts, nil))
	})

	t.Run("Milliseconds", func(t *testing.T) {
		ms := clock.Add(-2*time.Minute).Unix() * 1000
		assert.Equal(t, "2 minutes ago", TimeAgo(ms, nil))
	})

	t.Run("ZeroIsEmpty", func(t *testing.T) {
		assert.Equal(t, "", TimeAgo(0, nil))
	})

	t.Run("CustomLabels", func(t *testing.T) {
		lang := &Language{Time: &TimeLanguage{
			Ago:       String("atrás"),
			Minutes:   String("minutos atrás"),
			FromNow:   String("a partir de agora"),
			Yesterday: String("ontem"),
		}}

		assert.Equal(t, "5 minutos atrás", TimeAgo(ago(5*time.Minute), lang))
		assert.Equal(t, "5 minutos a partir de agora", TimeAgo(clock.Add(5*time.Minute).Unix(), lang))
		assert.Equal(t, "ontem", TimeAgo(ago(30*time.Hour), lang))
		assert.Equal(t, "3 hours ago", TimeAgo(ago(3*time.Hour), lang), "missing labels use defaults")
	})

	t.Run("PercentInLabels", func(t *testing.T) {
		lang := &Language{Time: &TimeLanguage{Seconds: String("% seconds ago")}}
		assert.Equal(t, "30 % seconds ago", TimeAgo(ago(30*time.Second), lang))
	})
}

// TestSafeNum tests the number predicate
func TestSafeNum(t *testing.T) {
	valid := []any{0, 5, int64(-3), uint8(7), 5.5, float32(1.5), "5", " 7.25 ", "-1e3", Float(3)}
	for _, v := range valid {
		assert.True(t, SafeNum(v), "%#v", v)
	}

	invalid := []any{nil, "", "abc", "5px", math.NaN(), math.Inf(1), math.Inf(-1), "NaN", true, (*float64)(nil), []int{1}}
	for _, v := range invalid {
		assert.False(t, SafeNum(v), "%#v", v)
	}
}

// TestPresenceAndTruthiness tests the absence and truthiness predicates
func TestPresenceAndTruthiness(t *testing.T) {
	t.Run("IsPresent", func(t *testing.T) {
		assert.False(t, IsPresent(nil))
		assert.False(t, IsPresent((*bool)(nil)))
		assert.False(t, IsPresent([]Story(nil)))
		assert.False(t, IsPresent(Hook(nil)))

		assert.True(t, IsPresent(Bool(false)))
		assert.True(t, IsPresent(false))
		assert.True(t, IsPresent(""))
		assert.True(t, IsPresent(0))
		assert.True(t, IsPresent([]Story{}))
	})

	t.Run("Truthy", func(t *testing.T) {
		falsy := []any{nil, false, 0, 0.0, "", Bool(false), String(""), (*bool)(nil), math.NaN()}
		for _, v := range falsy {
			assert.False(t, Truthy(v), "%#v", v)
		}

		truthy := []any{true, 1, -1, 0.5, "x", "false", Bool(true), String("x"), []Story{}, &Options{}}
		for _, v := range truthy {
			assert.True(t, Truthy(v), "%#v", v)
		}
	})
}
