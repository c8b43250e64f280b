package redis

const (
	keyPrefix = "support/"

	// KeyTickets holds the ticket sequence
	KeyTickets = keyPrefix + "tickets"
	// KeyPrefixEscalations is followed by the day, `support/escalations/2006-01-02`
	KeyPrefixEscalations = keyPrefix + "escalations/"
)
