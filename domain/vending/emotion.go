package vending

// Emotion is the dominant facial expression reported by the detector for
// the current turn. It is never persisted.
type Emotion string

const (
	EmotionHappy     Emotion = "happy"
	EmotionNeutral   Emotion = "neutral"
	EmotionSad       Emotion = "sad"
	EmotionAngry     Emotion = "angry"
	EmotionFearful   Emotion = "fearful"
	EmotionDisgusted Emotion = "disgusted"
	EmotionSurprised Emotion = "surprised"
	EmotionUndefined Emotion = "undefined"
)

// ParseEmotion maps a detector label onto the closed emotion set.
// Unknown labels collapse to EmotionUndefined rather than leaking free text
// into speech output.
func ParseEmotion(s string) Emotion {
	switch Emotion(s) {
	case EmotionHappy, EmotionNeutral, EmotionSad, EmotionAngry,
		EmotionFearful, EmotionDisgusted, EmotionSurprised:
		return Emotion(s)
	default:
		return EmotionUndefined
	}
}

// Known reports whether the detector produced a usable expression.
func (e Emotion) Known() bool {
	return e != EmotionUndefined && e != ""
}
