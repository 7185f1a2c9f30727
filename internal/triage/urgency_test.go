package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectAutoSeverity(t *testing.T) {
	tests := []struct {
		name     string
		symptoms string
		want     int
	}{
		{"emergency keyword", "sudden chest pain since this morning", 5},
		{"emergency wins over medium", "fever and cannot breathe", 5},
		{"case insensitive", "Severe Pain in my leg", 5},
		{"urgent keyword", "constant vomiting since yesterday", 4},
		{"urgent fracture", "suspected fracture in my wrist", 4},
		{"medium keyword", "dry cough and runny nose", 3},
		{"no match defaults low", "feeling a bit tired lately", 1},
		{"empty symptoms", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectAutoSeverity(tt.symptoms))
		})
	}
}

func TestLevelForSeverity(t *testing.T) {
	assert.Equal(t, UrgencyEmergency, LevelForSeverity(5))
	assert.Equal(t, UrgencyHigh, LevelForSeverity(4))
	assert.Equal(t, UrgencyMedium, LevelForSeverity(3))
	assert.Equal(t, UrgencyNormal, LevelForSeverity(2))
	assert.Equal(t, UrgencyNormal, LevelForSeverity(1))
	// Total over out-of-range input as well.
	assert.Equal(t, UrgencyEmergency, LevelForSeverity(9))
	assert.Equal(t, UrgencyNormal, LevelForSeverity(0))
}

func TestClassifyTakesMaxOfReportedAndAuto(t *testing.T) {
	tests := []struct {
		name      string
		symptoms  string
		reported  int
		wantFinal int
		wantLevel UrgencyLevel
	}{
		{"auto dominates", "severe chest pain", 2, 5, UrgencyEmergency},
		{"reported dominates", "mild rash on my arm", 4, 4, UrgencyHigh},
		{"equal", "fever for two days", 3, 3, UrgencyMedium},
		{"both low", "slight discomfort", 1, 1, UrgencyNormal},
		{"reported 2 no keywords", "general checkup please", 2, 2, UrgencyNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			final, level := Classify(tt.symptoms, tt.reported)
			assert.Equal(t, tt.wantFinal, final)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

// Every emergency keyword forces severity 5 and EMERGENCY regardless of the
// reported severity.
func TestClassifyEmergencyKeywordsAlwaysEmergency(t *testing.T) {
	for _, kw := range severityRules[0].keywords {
		for reported := 1; reported <= 5; reported++ {
			final, level := Classify("patient reports "+kw, reported)
			assert.Equal(t, 5, final, "keyword %q reported %d", kw, reported)
			assert.Equal(t, UrgencyEmergency, level, "keyword %q reported %d", kw, reported)
		}
	}
}

func TestClassifyIsStable(t *testing.T) {
	f1, l1 := Classify("migraine and nausea", 2)
	f2, l2 := Classify("migraine and nausea", 2)
	assert.Equal(t, f1, f2)
	assert.Equal(t, l1, l2)
}

func TestPreempts(t *testing.T) {
	assert.True(t, UrgencyEmergency.Preempts(UrgencyNormal))
	assert.True(t, UrgencyEmergency.Preempts(UrgencyMedium))
	assert.True(t, UrgencyHigh.Preempts(UrgencyNormal))
	assert.True(t, UrgencyHigh.Preempts(UrgencyMedium))

	assert.False(t, UrgencyEmergency.Preempts(UrgencyHigh))
	assert.False(t, UrgencyEmergency.Preempts(UrgencyEmergency))
	assert.False(t, UrgencyHigh.Preempts(UrgencyEmergency))
	assert.False(t, UrgencyMedium.Preempts(UrgencyNormal))
	assert.False(t, UrgencyNormal.Preempts(UrgencyNormal))
}
