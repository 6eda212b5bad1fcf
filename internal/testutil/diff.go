package testutil

// PrintWantGot formats a cmp.Diff result for a test failure message.
func PrintWantGot(diff string) string {
	return "(-want +got):\n" + diff
}
