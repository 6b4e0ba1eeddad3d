package domain

const AdminAccessID = 1

// Caller is the authenticated identity an operation runs on behalf of.
type Caller struct {
	ID       uint
	AccessID int
}

func (c Caller) Privileged() bool { return c.AccessID == AdminAccessID }

// CanSee applies the order access scope.
func (c Caller) CanSee(customerID uint) bool {
	return c.Privileged() || c.ID == customerID
}
