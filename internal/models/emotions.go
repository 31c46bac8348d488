package models

import (
	"math"
	"strings"
)

// MaxEmotionValue is the upper bound of every main-emotion bucket.
const MaxEmotionValue = 59.0

const (
	EmotionHappy   = "happy"
	EmotionAngry   = "angry"
	EmotionNeutral = "neutral"
	EmotionSad     = "sad"
)

// MainEmotions lists the device-actuation buckets in their canonical order.
var MainEmotions = []string{EmotionHappy, EmotionAngry, EmotionNeutral, EmotionSad}

// emotionSplit maps a classifier label onto the buckets its confidence is shared between.
var emotionSplit = map[string][]string{
	"happy":    {EmotionHappy},
	"angry":    {EmotionAngry},
	"neutral":  {EmotionNeutral},
	"sad":      {EmotionSad},
	"surprise": {EmotionHappy, EmotionNeutral},
	"fear":     {EmotionSad, EmotionAngry},
	"disgust":  {EmotionAngry, EmotionNeutral},
}

// EmotionScores holds the non-zero main-emotion buckets computed for one photo.
type EmotionScores map[string]float64

// AggregateEmotions folds raw classifier confidences into the main buckets.
// Each label is split evenly across its buckets first, then every bucket is
// rounded to two decimals and clamped to [0, MaxEmotionValue], and finally
// empty buckets are dropped. Unknown labels are ignored.
func AggregateEmotions(detected map[string]float64) EmotionScores {
	sums := make(map[string]float64, len(MainEmotions))
	for label, value := range detected {
		buckets, ok := emotionSplit[strings.ToLower(strings.TrimSpace(label))]
		if !ok {
			continue
		}
		share := value / float64(len(buckets))
		for _, bucket := range buckets {
			sums[bucket] += share
		}
	}

	scores := make(EmotionScores, len(sums))
	for _, bucket := range MainEmotions {
		v := clampEmotion(roundTo(sums[bucket], 2))
		if v > 0 {
			scores[bucket] = v
		}
	}
	return scores
}

// Buckets returns the bucket names present in s, in canonical order.
func (s EmotionScores) Buckets() []string {
	out := make([]string, 0, len(s))
	for _, bucket := range MainEmotions {
		if _, ok := s[bucket]; ok {
			out = append(out, bucket)
		}
	}
	return out
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clampEmotion(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > MaxEmotionValue {
		return MaxEmotionValue
	}
	return v
}
