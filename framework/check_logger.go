package framework

// CheckLogger receives progress notifications while checks run.
type CheckLogger interface {
	CheckStarted(id CheckID)
	CheckError(id CheckID, err error)
	CheckFinished(id CheckID, failed bool, gating bool, debugOutput CapturedOutput)
	CheckSkipped(id CheckID, reason string)
}

type nullCheckLogger struct{}

func (n nullCheckLogger) CheckStarted(CheckID)                              {}
func (n nullCheckLogger) CheckError(CheckID, error)                         {}
func (n nullCheckLogger) CheckFinished(CheckID, bool, bool, CapturedOutput) {}
func (n nullCheckLogger) CheckSkipped(CheckID, string)                      {}
