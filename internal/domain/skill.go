package domain

// SkillLevel is the ordered player skill scale.
type SkillLevel string

const (
	SkillAny          SkillLevel = "Any"
	SkillBeginner     SkillLevel = "Beginner"
	SkillIntermediate SkillLevel = "Intermediate"
	SkillAdvanced     SkillLevel = "Advanced"
	SkillSemiPro      SkillLevel = "Semi-Pro"
	SkillProfessional SkillLevel = "Professional"
)

var skillRank = map[SkillLevel]int{
	SkillBeginner:     1,
	SkillIntermediate: 2,
	SkillAdvanced:     3,
	SkillSemiPro:      4,
	SkillProfessional: 5,
}

// Rank returns the position on the ordered scale; 0 for Any or unknown.
func (s SkillLevel) Rank() int { return skillRank[s] }

// Meets reports whether s satisfies the required minimum level.
// A requirement of Any is always met.
func (s SkillLevel) Meets(required SkillLevel) bool {
	if required == SkillAny || required == "" {
		return true
	}
	return s.Rank() >= required.Rank()
}

// Valid reports whether s is a known skill level (Any included).
func (s SkillLevel) Valid() bool {
	return s == SkillAny || s.Rank() > 0
}
