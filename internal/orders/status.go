package orders

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// StatusAll is the list filter value meaning "any status".
const StatusAll = "all"

var validNext = map[Status]map[Status]bool{
	StatusConfirmed:  {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from may move to to. UpdateStatus does not
// consult it; automated transitions do.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
