package domain

// Agent models a call-center operator that tickets are assigned to.
type Agent struct {
	ID         int64
	Name       string
	Email      string
	EmployeeID string
	Department string
	Active     bool
}
