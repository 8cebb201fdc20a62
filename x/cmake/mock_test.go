package cmake

import (
	"context"

	"github.com/goplus/usecmake/internal/proc"
)

// recordRunner records every command and answers Output with out.
type recordRunner struct {
	cmds []proc.Command
	out  string
}

func (r *recordRunner) Run(ctx context.Context, cmd proc.Command) error {
	r.cmds = append(r.cmds, cmd)
	return nil
}

func (r *recordRunner) Output(ctx context.Context, cmd proc.Command) ([]byte, error) {
	r.cmds = append(r.cmds, cmd)
	return []byte(r.out), nil
}
