package types

// User is the acting identity resolved by the external identity
// collaborator. The core never authenticates; it only consumes this.
type User struct {
	ID      string
	Email   string
	IsAdmin bool
}
