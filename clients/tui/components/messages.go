package components

// SubmitMsg is emitted when the user presses Enter in an enabled input.
type SubmitMsg struct {
	Text string
}
