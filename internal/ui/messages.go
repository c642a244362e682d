package ui

// frameMsg carries a rendered frame from the renderer to the terminal.
type frameMsg string

// quitMsg asks the terminal program to exit after the dispatcher has stopped.
type quitMsg struct{}
