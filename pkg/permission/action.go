package permission

//go:generate go run github.com/dmarkham/enumer -type Action -trimprefix Action -transform lower -json -text -yaml -output action.gen.go

// Action is one of the four CRUD operations a Permission grants.
type Action int

const (
	ActionCreate Action = iota
	ActionRead
	ActionUpdate
	ActionDelete
)
