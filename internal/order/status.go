package order

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusCollected Status = "COLLECTED"
	StatusDelivered Status = "DELIVERED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusAccepted: true, StatusCancelled: true},
	StatusAccepted:  {StatusCollected: true, StatusCancelled: true},
	StatusCollected: {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {StatusCompleted: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(validNext[s]) == 0 && s.Valid()
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// AllowedNext returns the legal successor states, in lifecycle order.
func AllowedNext(from Status) []Status {
	var next []Status
	for _, s := range []Status{StatusAccepted, StatusCollected, StatusDelivered, StatusCompleted, StatusCancelled} {
		if validNext[from][s] {
			next = append(next, s)
		}
	}
	return next
}
