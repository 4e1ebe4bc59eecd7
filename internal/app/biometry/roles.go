package biometry

// Role is one of the two canonical conversation roles
type Role string

const (
	RoleTherapist Role = "therapist"
	RolePatient   Role = "patient"
	RoleNone      Role = ""
)

// RoleAssigner decides which canonical role a speaker label plays.
// Assign is called once per attributed segment, in chronological order.
type RoleAssigner interface {
	Assign(label string) Role
}

// FirstSeenAssigner maps the first distinct label to therapist and the second to patient.
// Later labels are not attributed. The order heuristic misattributes sessions where the patient speaks first.
type FirstSeenAssigner struct {
	roles map[string]Role
}

// NewFirstSeenAssigner returns the default role policy
func NewFirstSeenAssigner() *FirstSeenAssigner {
	return &FirstSeenAssigner{roles: make(map[string]Role, 2)}
}

func (a *FirstSeenAssigner) Assign(label string) Role {
	if role, ok := a.roles[label]; ok {
		return role
	}
	switch len(a.roles) {
	case 0:
		a.roles[label] = RoleTherapist
	case 1:
		a.roles[label] = RolePatient
	default:
		return RoleNone
	}
	return a.roles[label]
}

// StaticAssigner maps labels through a fixed table, for callers that already know the roles
type StaticAssigner map[string]Role

func (s StaticAssigner) Assign(label string) Role {
	return s[label]
}
