package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	StoreError      = 3
	WriteError      = 4
	TransformError  = 5
)
