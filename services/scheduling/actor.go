package scheduling

// Actor roles carried in the authenticated-identity context.
const (
	RoleClient   = "client"
	RoleProvider = "provider"
	RoleSystem   = "system"
)

// Actor identifies who is performing an operation.
type Actor struct {
	ID   string
	Role string
}

// System is the internal actor used by background jobs.
var System = Actor{ID: "system", Role: RoleSystem}
