package triage

import "strings"

// UrgencyLevel orders incoming cases for slot allocation.
type UrgencyLevel string

const (
	UrgencyNormal    UrgencyLevel = "NORMAL"
	UrgencyMedium    UrgencyLevel = "MEDIUM"
	UrgencyHigh      UrgencyLevel = "HIGH"
	UrgencyEmergency UrgencyLevel = "EMERGENCY"
)

// Preempts reports whether an incoming case at level u may displace a
// scheduled appointment at level existing.
func (u UrgencyLevel) Preempts(existing UrgencyLevel) bool {
	incomingCritical := u == UrgencyEmergency || u == UrgencyHigh
	existingRoutine := existing == UrgencyNormal || existing == UrgencyMedium
	return incomingCritical && existingRoutine
}

// severityRule maps a keyword tier to an auto-detected severity score.
// Tiers are evaluated in declaration order and short-circuit on the first
// keyword found, so emergency terms always win over weaker matches.
type severityRule struct {
	severity int
	keywords []string
}

var severityRules = []severityRule{
	{5, []string{
		"chest pain", "breathing", "shortness of breath", "bleeding", "unconscious",
		"stroke", "heart attack", "severe pain", "head injury", "cannot breathe", "choking",
	}},
	{4, []string{
		"vomiting", "high fever", "fainting", "severe", "broken", "fracture", "migraine",
	}},
	{3, []string{
		"fever", "cough", "cold", "headache", "flu", "sore throat",
	}},
}

// DetectAutoSeverity scans the symptom text for tiered keywords and returns
// the severity of the highest tier matched, or 1 when nothing matches.
func DetectAutoSeverity(symptoms string) int {
	s := strings.ToLower(symptoms)
	for _, rule := range severityRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.severity
			}
		}
	}
	return 1
}

// LevelForSeverity maps a 1-5 severity score to its urgency level.
// The mapping is total and monotone: 5→EMERGENCY, 4→HIGH, 3→MEDIUM,
// anything lower→NORMAL.
func LevelForSeverity(severity int) UrgencyLevel {
	switch {
	case severity >= 5:
		return UrgencyEmergency
	case severity == 4:
		return UrgencyHigh
	case severity == 3:
		return UrgencyMedium
	default:
		return UrgencyNormal
	}
}

// Classify combines the patient-reported severity with the keyword-derived
// auto severity. The final severity is the max of the two; the urgency level
// is derived from the final severity and never set independently.
func Classify(symptoms string, reportedSeverity int) (finalSeverity int, level UrgencyLevel) {
	auto := DetectAutoSeverity(symptoms)
	finalSeverity = reportedSeverity
	if auto > finalSeverity {
		finalSeverity = auto
	}
	return finalSeverity, LevelForSeverity(finalSeverity)
}
