package triage

import "strings"

// Specialization names match the specialty column of doctor profiles.
type Specialization string

const (
	Cardiologist     Specialization = "Cardiologist"
	Dermatologist    Specialization = "Dermatologist"
	Neurologist      Specialization = "Neurologist"
	Orthopedist      Specialization = "Orthopedist"
	Pediatrician     Specialization = "Pediatrician"
	GeneralPhysician Specialization = "General Physician"
)

// symptomMapping pairs a symptom keyword with the specialization it points
// to. The list is scanned in declaration order and the first match wins, so
// more specific terms must precede generic ones.
type symptomMapping struct {
	keyword        string
	specialization Specialization
}

var symptomMappings = []symptomMapping{
	// Cardiac
	{"chest pain", Cardiologist},
	{"heart", Cardiologist},
	{"palpitations", Cardiologist},

	// Derma
	{"skin", Dermatologist},
	{"rash", Dermatologist},
	{"itch", Dermatologist},
	{"acne", Dermatologist},

	// Neuro
	{"headache", Neurologist},
	{"dizzy", Neurologist},
	{"migraine", Neurologist},
	{"seizure", Neurologist},

	// Ortho
	{"bone", Orthopedist},
	{"fracture", Orthopedist},
	{"joint", Orthopedist},
	{"back pain", Orthopedist},

	// Pedia
	{"baby", Pediatrician},
	{"child", Pediatrician},

	// General fallback terms for fever, flu, etc.
	{"fever", GeneralPhysician},
	{"flu", GeneralPhysician},
	{"cough", GeneralPhysician},
	{"cold", GeneralPhysician},
	{"fatigue", GeneralPhysician},
}

// Recommend maps free-text symptoms to a specialization. Returns
// GeneralPhysician when no keyword matches.
func Recommend(symptoms string) Specialization {
	s := strings.ToLower(symptoms)
	for _, m := range symptomMappings {
		if strings.Contains(s, m.keyword) {
			return m.specialization
		}
	}
	return GeneralPhysician
}
