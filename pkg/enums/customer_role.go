package enums

// CustomerRole distinguishes customer and back-office identities.
type CustomerRole string

const (
	CustomerRoleCustomer CustomerRole = "customer"
	CustomerRoleAdmin    CustomerRole = "admin"
)

// String implements fmt.Stringer.
func (r CustomerRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known CustomerRole.
func (r CustomerRole) IsValid() bool {
	return r == CustomerRoleCustomer || r == CustomerRoleAdmin
}
