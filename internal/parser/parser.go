package parser

// Parser extracts request statistics from a load tool's console output
type Parser interface {
	ParseStats(output string) (Stats, bool)
	ParseErrors(output string) []ErrorLine
}
