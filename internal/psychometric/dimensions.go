// internal/psychometric/dimensions.go
package psychometric

import (
	"fmt"
	"strings"

	apperrors "psychometric-workers/internal/common/errors"
)

// AssessmentType selects the dimension registry and profile vocabulary.
type AssessmentType string

const (
	Entrepreneur AssessmentType = "entrepreneur"
	Mentor       AssessmentType = "mentor"
)

// ParseAssessmentType accepts "entrepreneur" or "mentor" in any case. An
// empty value yields "" so callers can fall back to role resolution.
func ParseAssessmentType(s string) (AssessmentType, error) {
	switch AssessmentType(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case Entrepreneur:
		return Entrepreneur, nil
	case Mentor:
		return Mentor, nil
	default:
		return "", apperrors.NewInvalidAssessmentTypeError(s)
	}
}

// Dimension is a named trait scored on a 0-10 scale.
type Dimension struct {
	Key         string  `json:"key"`
	DisplayName string  `json:"display_name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// Registry is an immutable, ordered set of dimensions. Iteration order is
// registration order and is what every ranking tie-break relies on.
type Registry struct {
	dims  []Dimension
	index map[string]int
}

// NewRegistry panics on duplicate keys; registries are static tables built
// at init.
func NewRegistry(dims ...Dimension) *Registry {
	r := &Registry{
		dims:  make([]Dimension, len(dims)),
		index: make(map[string]int, len(dims)),
	}
	copy(r.dims, dims)
	for i, d := range r.dims {
		if _, dup := r.index[d.Key]; dup {
			panic(fmt.Sprintf("psychometric: duplicate dimension %q", d.Key))
		}
		r.index[d.Key] = i
	}
	return r
}

// Dimensions returns a copy in registration order.
func (r *Registry) Dimensions() []Dimension {
	out := make([]Dimension, len(r.dims))
	copy(out, r.dims)
	return out
}

func (r *Registry) Keys() []string {
	keys := make([]string, len(r.dims))
	for i, d := range r.dims {
		keys[i] = d.Key
	}
	return keys
}

func (r *Registry) Lookup(key string) (Dimension, bool) {
	i, ok := r.index[key]
	if !ok {
		return Dimension{}, false
	}
	return r.dims[i], true
}

func (r *Registry) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

func (r *Registry) Len() int { return len(r.dims) }

// TotalWeight sums every registered weight, answered or not.
func (r *Registry) TotalWeight() float64 {
	var sum float64
	for _, d := range r.dims {
		sum += d.Weight
	}
	return sum
}

var entrepreneurRegistry = NewRegistry(
	Dimension{"leadership", "Leadership & Vision", "Ability to lead, inspire, and set strategic direction", 1.0},
	Dimension{"risk_tolerance", "Risk Tolerance", "Comfort with uncertainty and calculated risk-taking", 1.0},
	Dimension{"resilience", "Resilience & Adaptability", "Ability to recover from setbacks and adapt to change", 1.0},
	Dimension{"innovation", "Innovation & Creativity", "Capacity for creative thinking and novel solutions", 1.0},
	Dimension{"decision_making", "Decision Making", "Quality and speed of judgment under pressure", 1.0},
	Dimension{"emotional_intelligence", "Emotional Intelligence", "Self-awareness and interpersonal effectiveness", 1.0},
	Dimension{"persistence", "Persistence & Grit", "Determination to pursue long-term goals", 1.0},
	Dimension{"strategic_thinking", "Strategic Thinking", "Ability to analyze complex situations and plan ahead", 1.0},
	Dimension{"communication", "Communication Skills", "Clarity and effectiveness in conveying ideas", 1.0},
	Dimension{"problem_solving", "Problem Solving", "Analytical and creative approach to challenges", 1.0},
)

var mentorRegistry = NewRegistry(
	Dimension{"coaching_ability", "Coaching & Guidance", "Ability to guide mentees without imposing solutions, facilitating their growth", 1.2},
	Dimension{"domain_expertise", "Domain Expertise", "Deep knowledge in specific industries, technologies, or business functions", 1.1},
	Dimension{"empathy", "Empathy & Patience", "Understanding mentee challenges, showing patience during their learning journey", 1.3},
	Dimension{"experience_breadth", "Entrepreneurial Experience", "Years building, scaling, failing, or advising ventures - real-world battle scars", 1.0},
	Dimension{"network_strength", "Network & Connections", "Quality of professional network and willingness to make introductions", 0.9},
	Dimension{"feedback_quality", "Feedback Quality", "Providing specific, actionable, constructive guidance rather than vague advice", 1.2},
	Dimension{"availability", "Time Commitment", "Realistic availability and consistency in mentee interactions", 1.0},
	Dimension{"communication", "Communication Clarity", "Explaining complex concepts simply, active listening, asking powerful questions", 1.1},
	Dimension{"adaptability", "Adaptability to Mentee Needs", "Adjusting mentoring style based on mentee's learning preferences and context", 1.0},
	Dimension{"accountability", "Accountability & Follow-through", "Holding mentees accountable while being reliable and following through on commitments", 1.0},
)

// EntrepreneurRegistry returns the ten entrepreneur dimensions, all weight 1.0.
func EntrepreneurRegistry() *Registry { return entrepreneurRegistry }

// MentorRegistry returns the ten mentor dimensions with explicit weights.
func MentorRegistry() *Registry { return mentorRegistry }

// RegistryFor returns the registry for t; anything but Mentor is treated as
// an entrepreneur.
func RegistryFor(t AssessmentType) *Registry {
	if t == Mentor {
		return mentorRegistry
	}
	return entrepreneurRegistry
}

// ExpertiseDomains is the catalog mentors choose focus areas from.
var ExpertiseDomains = []string{
	"Technology & Software Development",
	"Product Management & Design",
	"Sales & Business Development",
	"Marketing & Growth",
	"Finance & Fundraising",
	"Operations & Supply Chain",
	"Legal & Compliance",
	"HR & Talent Management",
	"Healthcare & Biotech",
	"E-commerce & Retail",
	"FinTech",
	"EdTech",
	"SaaS & Enterprise",
	"Consumer Products",
	"Social Impact & Sustainability",
}

var TeachingStyles = []string{
	"Hands-on (works alongside mentee)",
	"Socratic (asks questions to guide discovery)",
	"Directive (provides clear instructions)",
	"Collaborative (equal partnership approach)",
	"Challenging (pushes mentee beyond comfort zone)",
}
