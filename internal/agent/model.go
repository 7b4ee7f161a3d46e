package agent

import "time"

// Agent is an account record in the agents collection. The same table backs
// administrative agents as well as the client/distributor accounts they
// manage, distinguished by UserType.
type Agent struct {
	ID             string
	Email          string
	LegacyPassword string
	PasswordDigest []byte
	FirstName      string
	LastName       string
	AgentCode      string
	Phone          string
	UserType       string
	Status         string
	AccountNumber  string
	Balance        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName composes a human readable name from the stored name parts.
func (a Agent) FullName() string {
	if a.FirstName != "" && a.LastName != "" {
		return a.FirstName + " " + a.LastName
	}
	return "Agent"
}
