package testutil

// WithStandardBoard adds two issues per column:
//
//	todo:   1 (bug), 2
//	doing:  3 (doing), 4 (In Progress, frontend)
//	review: 5 (review), 6 (Testing)
//	done:   7 (closed, review), 8 (closed)
//
// Issues are interleaved so list order differs from column order.
func (b *Builder) WithStandardBoard() *Builder {
	return b.
		WithIssue(1, Title("Fix login redirect"), Labels("bug")).
		WithIssue(3, Title("Add search box"), Labels("doing")).
		WithIssue(5, Title("Cache project list"), Labels("review")).
		WithIssue(7, Title("Ship v1"), Labels("review"), Closed()).
		WithIssue(2, Title("Write docs"), Description("Usage and config")).
		WithIssue(4, Title("Dark mode"), Labels("In Progress", "frontend")).
		WithIssue(6, Title("Keyboard drag"), Labels("Testing")).
		WithIssue(8, Title("Bootstrap repo"), Closed())
}
