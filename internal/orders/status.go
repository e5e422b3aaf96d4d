package orders

type Status string

const (
	StatusWaiting Status = "WAITING"
	StatusPacking Status = "PACKING"
	StatusPacked  Status = "PACKED"
)

var validNext = map[Status]map[Status]bool{
	StatusWaiting: {StatusPacking: true},
	StatusPacking: {StatusPacked: true},
	StatusPacked:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
