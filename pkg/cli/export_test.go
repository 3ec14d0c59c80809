package cli

var (
	RunEvaluate     = runEvaluate
	PrintEvaluation = printEvaluation
)
