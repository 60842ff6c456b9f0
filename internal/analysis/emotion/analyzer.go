package emotion

import (
	"math"
	"strings"
)

// Label 表示情绪分析输出中的主要情绪。
type Label string

const (
	Neutral Label = "neutral"
	Joy     Label = "joy"
	Sadness Label = "sadness"
	Anger   Label = "anger"
	Fear    Label = "fear"
	Anxiety Label = "anxiety"
)

// Analysis mirrors the emotion_analysis object the assistant is asked to produce.
type Analysis struct {
	PrimaryEmotion Label   `json:"primary_emotion"`
	Intensity      float64 `json:"intensity"`
	StressLevel    float64 `json:"stress_level"`
}

var keywordBuckets = map[Label][]string{
	Joy: {
		"嬉しい", "うれしい", "楽しい", "幸せ", "よかった", "最高", "ありがとう", "わくわく", "笑",
		"happy", "glad", "great", "awesome", "thanks", "thank you", "love", "excited", "fun",
	},
	Sadness: {
		"悲しい", "かなしい", "寂しい", "さみしい", "辛い", "つらい", "落ち込", "泣", "孤独", "失望", "むなしい",
		"sad", "lonely", "cry", "depressed", "upset", "hurt", "miss", "empty",
	},
	Anger: {
		"怒", "ムカつく", "むかつく", "イライラ", "腹が立", "許せない", "うざい", "最悪",
		"angry", "furious", "mad", "annoyed", "hate", "rage",
	},
	Fear: {
		"怖い", "こわい", "恐怖", "恐ろしい", "震え", "危ない",
		"afraid", "scared", "fear", "terrified", "frightened",
	},
	Anxiety: {
		"不安", "心配", "緊張", "焦", "眠れない", "どうしよう", "疲れ", "しんどい", "プレッシャー", "ストレス",
		"anxious", "worried", "nervous", "stress", "tired", "overwhelmed", "panic",
	},
}

// stressWeight 表示各情绪对压力水平的贡献。
var stressWeight = map[Label]float64{
	Joy:     0,
	Sadness: 0.6,
	Anger:   0.8,
	Fear:    0.9,
	Anxiety: 1,
}

// Analyze 根据用户话语用关键词规则估计情绪，用于模型未给出分析时的兜底。
func Analyze(utterance string) Analysis {
	scores := scoreText(utterance)

	best, bestScore, total := Neutral, 0, 0
	for _, label := range []Label{Joy, Sadness, Anger, Fear, Anxiety} {
		s := scores[label]
		total += s
		if s > bestScore {
			best, bestScore = label, s
		}
	}

	if bestScore == 0 {
		return Analysis{PrimaryEmotion: Neutral, Intensity: 0.1, StressLevel: 0.1}
	}

	// 基础强度 0.3，随得分提升，封顶 1。
	intensity := clamp01(0.3 + float64(bestScore)/10)

	var stress float64
	for label, s := range scores {
		stress += stressWeight[label] * float64(s)
	}
	stressLevel := clamp01(stress / math.Max(float64(total), 1) * intensity)

	return Analysis{
		PrimaryEmotion: best,
		Intensity:      round2(intensity),
		StressLevel:    round2(stressLevel),
	}
}

func scoreText(text string) map[Label]int {
	scores := make(map[Label]int)
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return scores
	}

	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, strings.ToLower(word)) {
				scores[label] += 3
			}
		}
	}

	if scores[Joy] > 0 {
		exclamations := strings.Count(text, "!") + strings.Count(text, "！")
		scores[Joy] += exclamations
	}
	return scores
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
