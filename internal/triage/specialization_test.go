package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommend(t *testing.T) {
	tests := []struct {
		name     string
		symptoms string
		want     Specialization
	}{
		{"cardiac", "tight chest pain when climbing stairs", Cardiologist},
		{"derma", "mild rash on my forearm", Dermatologist},
		{"neuro", "recurring migraine attacks", Neurologist},
		{"ortho", "back pain after lifting", Orthopedist},
		{"pedia", "my child has an earache", Pediatrician},
		{"general term", "fever and chills", GeneralPhysician},
		{"no match", "routine annual screening", GeneralPhysician},
		{"empty", "", GeneralPhysician},
		{"case insensitive", "SKIN irritation", Dermatologist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.symptoms))
		})
	}
}

// The mapping is scanned in declaration order: "chest pain" precedes
// "headache", so a text containing both resolves to Cardiologist.
func TestRecommendFirstMatchWins(t *testing.T) {
	assert.Equal(t, Cardiologist, Recommend("headache and chest pain"))
	// "headache" precedes the general "fever" entry.
	assert.Equal(t, Neurologist, Recommend("fever with a headache"))
}
