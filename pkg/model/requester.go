package model

// Roles supplied by the identity collaborator.
const (
	RolePatient       = "patient"
	RoleDoctor        = "doctor"
	RoleAdmin         = "admin"
	RoleHospitalAdmin = "hospital_admin"
)

// Requester is the authenticated caller as reported by the identity
// collaborator. Authentication itself happens upstream; this core only
// consumes the resulting (id, role) pair.
type Requester struct {
	ID   string `json:"id" validate:"required,mongodb"`
	Role string `json:"role" validate:"required,oneof=patient doctor admin hospital_admin"`
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}
