package execution

import "context"

// Executor runs an external command line and reports how it ended
type Executor interface {
	Run(ctx context.Context, commandLine string) (*Result, error)
}
