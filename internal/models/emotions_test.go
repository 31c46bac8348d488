package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateEmotions_ClampIsPerBucket(t *testing.T) {
	scores := AggregateEmotions(map[string]float64{"happy": 80, "sad": 20})

	assert.Equal(t, EmotionScores{EmotionHappy: 59, EmotionSad: 20}, scores)
}

func TestAggregateEmotions_SurpriseSplitsEvenly(t *testing.T) {
	scores := AggregateEmotions(map[string]float64{"surprise": 40})

	assert.Equal(t, EmotionScores{EmotionHappy: 20, EmotionNeutral: 20}, scores)
}

func TestAggregateEmotions_SplitBeforeClamp(t *testing.T) {
	// 50 + 100/2 = 100 before clamping, so happy ends at the cap
	scores := AggregateEmotions(map[string]float64{"happy": 50, "surprise": 100})

	assert.Equal(t, 59.0, scores[EmotionHappy])
	assert.Equal(t, 50.0, scores[EmotionNeutral])
}

func TestAggregateEmotions_FearAndDisgust(t *testing.T) {
	scores := AggregateEmotions(map[string]float64{"fear": 10, "disgust": 6})

	assert.Equal(t, 5.0, scores[EmotionSad])
	assert.Equal(t, 8.0, scores[EmotionAngry])
	assert.Equal(t, 3.0, scores[EmotionNeutral])
	assert.NotContains(t, scores, EmotionHappy)
}

func TestAggregateEmotions_PrunesZeroAndUnknown(t *testing.T) {
	scores := AggregateEmotions(map[string]float64{"happy": 0, "contempt": 30, "sad": 0.001})

	assert.Empty(t, scores)
}

func TestAggregateEmotions_NegativeClampedAndPruned(t *testing.T) {
	scores := AggregateEmotions(map[string]float64{"angry": -5, "neutral": 12.346})

	assert.NotContains(t, scores, EmotionAngry)
	assert.Equal(t, 12.35, scores[EmotionNeutral])
}

func TestAggregateEmotions_CaseInsensitiveLabels(t *testing.T) {
	scores := AggregateEmotions(map[string]float64{"Happy": 10, " SAD ": 4})

	assert.Equal(t, EmotionScores{EmotionHappy: 10, EmotionSad: 4}, scores)
}

func TestAggregateEmotions_KeysAndRange(t *testing.T) {
	detected := map[string]float64{
		"angry": 3.1, "disgust": 0.2, "fear": 12.9, "happy": 44,
		"sad": 88, "surprise": 71, "neutral": 99,
	}
	scores := AggregateEmotions(detected)

	for k, v := range scores {
		assert.Contains(t, MainEmotions, k)
		assert.Greater(t, v, 0.0)
		assert.LessOrEqual(t, v, MaxEmotionValue)
	}
}

func TestEmotionScores_BucketsCanonicalOrder(t *testing.T) {
	s := EmotionScores{EmotionSad: 1, EmotionHappy: 2, EmotionNeutral: 3}

	assert.Equal(t, []string{EmotionHappy, EmotionNeutral, EmotionSad}, s.Buckets())
}
